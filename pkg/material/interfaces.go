package material

import (
	"github.com/df07/go-stereo-raytracer/pkg/core"
)

// Material interface for objects that can scatter rays.
// Implementations are immutable after construction, so one instance may be
// shared by many shapes and read from several goroutines at once.
type Material interface {
	// Scatter returns the attenuated outgoing ray, or false if the incoming
	// ray is absorbed. All randomness is drawn from sampler.
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Per-channel color attenuation
}

// HitRecord contains information about a ray-object intersection.
//
// Normal is unit length and points out of the shape, whichever side the ray
// came from. Materials that care about the side compare it with the ray
// direction themselves. A HitRecord only lives for the query that made it.
type HitRecord struct {
	Point    core.Vec3 // Point of intersection
	Normal   core.Vec3 // Outward surface normal
	T        float64   // Parameter t along the ray
	Material Material  // Material of the hit object
}

// Kind names the material variant for summaries and logs
func Kind(m Material) string {
	switch m.(type) {
	case *Lambertian:
		return "lambertian"
	case *Metal:
		return "metal"
	case *Dielectric:
		return "dielectric"
	}
	return "unknown"
}
