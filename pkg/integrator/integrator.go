package integrator

import (
	"github.com/df07/go-stereo-raytracer/pkg/core"
	"github.com/df07/go-stereo-raytracer/pkg/material"
)

// World is the read-only view of a scene that light transport needs
type World interface {
	// Hit returns the nearest intersection with t strictly inside rayT
	Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool)
	// BackgroundColors returns the sky gradient endpoints
	BackgroundColors() (topColor, bottomColor core.Vec3)
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns the linear radiance carried back along ray
	RayColor(ray core.Ray, world World, sampler core.Sampler) core.Vec3
}
