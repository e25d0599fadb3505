package integrator

import (
	"math"

	"github.com/df07/go-stereo-raytracer/pkg/core"
	"github.com/df07/go-stereo-raytracer/pkg/scene"
)

// ShadowAcneEpsilon is the minimum t accepted for a hit, so scattered rays
// do not re-hit the surface they leave from
const ShadowAcneEpsilon = 0.001

// PathTracingIntegrator implements unidirectional path tracing with the
// sky gradient as the only light
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor traces one path sample of at most MaxDepth bounces
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world World, sampler core.Sampler) core.Vec3 {
	return RayColor(ray, world, pt.config.MaxDepth, sampler)
}

// RayColor returns the radiance arriving along ray, following at most depth
// scattering events. Paths that run out of depth or are absorbed carry no light.
func RayColor(ray core.Ray, world World, depth int, sampler core.Sampler) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	hit, isHit := world.Hit(ray, core.NewInterval(ShadowAcneEpsilon, math.MaxFloat64))
	if !isHit {
		return backgroundGradient(ray, world)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	return scatter.Attenuation.MultiplyVec(RayColor(scatter.Scattered, world, depth-1, sampler))
}

// backgroundGradient blends from the bottom color straight down to the top
// color straight up
func backgroundGradient(ray core.Ray, world World) core.Vec3 {
	topColor, bottomColor := world.BackgroundColors()

	unitDirection := ray.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return bottomColor.Multiply(1.0 - t).Add(topColor.Multiply(t))
}
