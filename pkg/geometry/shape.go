package geometry

import (
	"github.com/df07/go-stereo-raytracer/pkg/core"
	"github.com/df07/go-stereo-raytracer/pkg/material"
)

// Shape interface for objects that can be hit by rays
type Shape interface {
	// Hit returns the nearest intersection with t strictly inside rayT
	Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool)
	BoundingBox() core.BBox
}
