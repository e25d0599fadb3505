package material

import (
	"math"

	"github.com/df07/go-stereo-raytracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64   // Index of refraction (e.g., 1.5 for glass)
	Albedo          core.Vec3 // Tint applied on every bounce, reflected or refracted
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64, albedo core.Vec3) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex, Albedo: albedo}
}

// NewClearDielectric creates untinted glass
func NewClearDielectric(refractiveIndex float64) *Dielectric {
	return NewDielectric(refractiveIndex, core.NewVec3(1, 1, 1))
}

// Scatter implements the Material interface for dielectric scattering
func (d *Dielectric) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Determine if we're entering or exiting the material
	frontFace := rayIn.Direction.Dot(hit.Normal) < 0

	normal := hit.Normal
	refractionRatio := 1.0 / d.RefractiveIndex
	if !frontFace {
		normal = normal.Negate()
		refractionRatio = d.RefractiveIndex
	}

	unitDirection := rayIn.Direction.Normalize()
	cosTheta := math.Min(unitDirection.Negate().Dot(normal), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

	// Check for total internal reflection
	cannotRefract := refractionRatio*sinTheta > 1.0

	var direction core.Vec3
	if cannotRefract || Reflectance(cosTheta, refractionRatio) > sampler.Get1D() {
		direction = unitDirection.Reflect(normal)
	} else if refracted, ok := unitDirection.Refract(normal, refractionRatio); ok {
		direction = refracted
	} else {
		direction = unitDirection.Reflect(normal)
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: d.Albedo,
	}, true
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
