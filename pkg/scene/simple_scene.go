package scene

import (
	"github.com/df07/go-stereo-raytracer/pkg/core"
	"github.com/df07/go-stereo-raytracer/pkg/geometry"
	"github.com/df07/go-stereo-raytracer/pkg/material"
)

// NewSimpleScene creates three spheres on a large ground sphere: tinted glass,
// diffuse blue and polished gold, seen head-on
func NewSimpleScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	s := NewScene()

	defaultCameraConfig := geometry.CameraConfig{
		LookFrom:      core.NewVec3(0, 0, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          50.0,
		AspectRatio:   s.Sampling.AspectRatio(),
		EyeSeparation: 0.06,
		DefocusAngle:  0.0,
		FocusDistance: 2.0,
	}
	s.Camera = defaultCameraConfig
	if len(cameraOverrides) > 0 {
		s.Camera = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	groundMaterial := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	centerMaterial := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	leftMaterial := material.NewDielectric(1.5, core.NewVec3(1.0, 0.8, 0.8))
	rightMaterial := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)

	s.Add(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, groundMaterial),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, centerMaterial),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, leftMaterial),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, rightMaterial),
	)

	return s
}
