package scene

import (
	"github.com/df07/go-stereo-raytracer/pkg/core"
	"github.com/df07/go-stereo-raytracer/pkg/geometry"
	"github.com/df07/go-stereo-raytracer/pkg/material"
)

// NewSharedGlassScene creates a row of glass spheres that all reference one
// dielectric instance, plus a hollow bubble built from a negative-radius shell.
// Depth differences between the spheres make the stereo offset easy to see.
func NewSharedGlassScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	s := NewScene()

	defaultCameraConfig := geometry.CameraConfig{
		LookFrom:      core.NewVec3(0, 1, 3),
		LookAt:        core.NewVec3(0, 0.3, -2),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          35.0,
		AspectRatio:   s.Sampling.AspectRatio(),
		EyeSeparation: 0.08,
		DefocusAngle:  0.0,
		FocusDistance: 5.0,
	}
	s.Camera = defaultCameraConfig
	if len(cameraOverrides) > 0 {
		s.Camera = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	glass := material.NewDielectric(1.5, core.NewVec3(0.95, 0.95, 1.0))
	ground := material.NewLambertian(core.NewVec3(0.5, 0.6, 0.5))
	inner := material.NewLambertian(core.NewVec3(0.7, 0.1, 0.1))

	s.Add(geometry.NewSphere(core.NewVec3(0, -1000.5, 0), 1000, ground))

	// Spheres march away from the camera so each sits at a different depth
	for i := 0; i < 5; i++ {
		x := -2.0 + float64(i)
		z := -0.5 - 1.5*float64(i)
		s.Add(geometry.NewSphere(core.NewVec3(x, 0, z), 0.5, glass))
	}

	// Hollow bubble with a diffuse core, all glass surfaces still shared
	bubble := core.NewVec3(0, 0.2, 0.5)
	s.Add(
		geometry.NewSphere(bubble, 0.3, glass),
		geometry.NewSphere(bubble, -0.28, glass),
		geometry.NewSphere(bubble, 0.15, inner),
	)

	return s
}
