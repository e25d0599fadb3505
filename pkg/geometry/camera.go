package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-stereo-raytracer/pkg/core"
)

// EyeSide selects one of the two stereo viewpoints
type EyeSide int

const (
	LeftEye EyeSide = iota
	RightEye
)

func (e EyeSide) String() string {
	if e == LeftEye {
		return "left"
	}
	return "right"
}

// CameraConfig describes a stereo camera. Angles are in degrees.
type CameraConfig struct {
	LookFrom      core.Vec3 // Midpoint between the two eyes
	LookAt        core.Vec3 // Point the camera looks at
	Up            core.Vec3 // Up direction
	VFov          float64   // Vertical field of view
	AspectRatio   float64   // Width / height
	EyeSeparation float64   // Distance between the eyes along the camera's right axis
	DefocusAngle  float64   // Cone angle of the lens seen from the focus plane (0 = pinhole)
	FocusDistance float64   // Distance to the plane of perfect focus
}

// DefaultCameraConfig returns the stock stereo camera
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		LookFrom:      core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20.0,
		AspectRatio:   16.0 / 9.0,
		EyeSeparation: 0.06, // roughly human interpupillary distance in scene metres
		DefocusAngle:  0.0,
		FocusDistance: 10.0,
	}
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	zero := core.Vec3{}
	if override.LookFrom != zero {
		result.LookFrom = override.LookFrom
	}
	if override.LookAt != zero {
		result.LookAt = override.LookAt
	}
	if override.Up != zero {
		result.Up = override.Up
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.EyeSeparation != 0 {
		result.EyeSeparation = override.EyeSeparation
	}
	if override.DefocusAngle != 0 {
		result.DefocusAngle = override.DefocusAngle
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}
	return result
}

// Validate rejects configurations that would produce non-finite rays
func (c CameraConfig) Validate() error {
	view := c.LookFrom.Subtract(c.LookAt)
	switch {
	case view.NearZero():
		return fmt.Errorf("camera: lookfrom %v and lookat %v coincide", c.LookFrom, c.LookAt)
	case c.Up.Cross(view).NearZero():
		return fmt.Errorf("camera: up %v is zero or parallel to the view direction", c.Up)
	case c.VFov <= 0 || c.VFov >= 180:
		return fmt.Errorf("camera: vertical fov %g must be in (0, 180)", c.VFov)
	case c.AspectRatio <= 0:
		return fmt.Errorf("camera: aspect ratio %g must be positive", c.AspectRatio)
	case c.FocusDistance <= 0:
		return fmt.Errorf("camera: focus distance %g must be positive", c.FocusDistance)
	case c.EyeSeparation < 0:
		return fmt.Errorf("camera: eye separation %g must not be negative", c.EyeSeparation)
	case c.DefocusAngle < 0 || c.DefocusAngle >= 180:
		return fmt.Errorf("camera: defocus angle %g must be in [0, 180)", c.DefocusAngle)
	}
	return nil
}

// Eye generates rays for one stereo viewpoint
type Eye struct {
	Origin          core.Vec3
	LowerLeftCorner core.Vec3
	Horizontal      core.Vec3
	Vertical        core.Vec3
	U, V            core.Vec3
	LensRadius      float64
}

// GetRay generates a ray for image-plane coordinates (s, t) where 0 <= s,t <= 1.
// The origin is jittered over the lens disk when LensRadius > 0.
func (e Eye) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	origin := e.Origin
	if e.LensRadius > 0 {
		rd := core.RandomInUnitDisk(sampler).Multiply(e.LensRadius)
		origin = origin.Add(e.U.Multiply(rd.X)).Add(e.V.Multiply(rd.Y))
	}

	direction := e.LowerLeftCorner.
		Add(e.Horizontal.Multiply(s)).
		Add(e.Vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}

// StereoCamera holds the left and right eyes, offset along the camera's right axis
type StereoCamera struct {
	Left   Eye
	Right  Eye
	config CameraConfig
}

// NewStereoCamera builds both eyes from a shared orthonormal basis
func NewStereoCamera(config CameraConfig) (*StereoCamera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	theta := config.VFov * math.Pi / 180.0
	halfHeight := math.Tan(theta / 2)
	halfWidth := config.AspectRatio * halfHeight

	w := config.LookFrom.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	focus := config.FocusDistance
	lensRadius := focus * math.Tan(config.DefocusAngle*math.Pi/180.0/2)
	halfSeparation := config.EyeSeparation / 2

	newEye := func(origin core.Vec3) Eye {
		return Eye{
			Origin: origin,
			LowerLeftCorner: origin.
				Subtract(u.Multiply(halfWidth * focus)).
				Subtract(v.Multiply(halfHeight * focus)).
				Subtract(w.Multiply(focus)),
			Horizontal: u.Multiply(2 * halfWidth * focus),
			Vertical:   v.Multiply(2 * halfHeight * focus),
			U:          u,
			V:          v,
			LensRadius: lensRadius,
		}
	}

	return &StereoCamera{
		Left:   newEye(config.LookFrom.Subtract(u.Multiply(halfSeparation))),
		Right:  newEye(config.LookFrom.Add(u.Multiply(halfSeparation))),
		config: config,
	}, nil
}

// Eye returns the requested viewpoint
func (c *StereoCamera) Eye(side EyeSide) Eye {
	if side == LeftEye {
		return c.Left
	}
	return c.Right
}

// Config returns the configuration the camera was built from
func (c *StereoCamera) Config() CameraConfig {
	return c.config
}
