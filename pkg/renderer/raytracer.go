package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/df07/go-stereo-raytracer/pkg/core"
	"github.com/df07/go-stereo-raytracer/pkg/geometry"
	"github.com/df07/go-stereo-raytracer/pkg/integrator"
	"github.com/df07/go-stereo-raytracer/pkg/scene"
)

// OutputMode selects how the two eyes end up in the final image
type OutputMode string

const (
	ModeAnaglyph   OutputMode = "anaglyph"     // Red/cyan composite
	ModeSideBySide OutputMode = "side-by-side" // Left | right, double width
	ModeLeft       OutputMode = "left"         // Left eye only
	ModeRight      OutputMode = "right"        // Right eye only
)

// ParseOutputMode validates a mode name
func ParseOutputMode(s string) (OutputMode, error) {
	switch mode := OutputMode(s); mode {
	case ModeAnaglyph, ModeSideBySide, ModeLeft, ModeRight:
		return mode, nil
	}
	return "", fmt.Errorf("unknown output mode %q (want anaglyph, side-by-side, left or right)", s)
}

// progressLines is how many log lines a render emits at most
const progressLines = 10

// Raytracer renders a scene through a stereo camera. It is single-threaded
// and reuses one sampler, so it must not be shared between goroutines.
type Raytracer struct {
	scene      *scene.Scene
	camera     *geometry.StereoCamera
	integrator integrator.Integrator
	config     scene.SamplingConfig
	sampler    core.Sampler
	logger     core.Logger
}

// NewRaytracer creates a raytracer for s. The camera's aspect ratio is taken
// from the sampling resolution so pixels stay square.
func NewRaytracer(s *scene.Scene, logger core.Logger) (*Raytracer, error) {
	config := s.Sampling
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("invalid resolution %dx%d", config.Width, config.Height)
	}
	if config.SamplesPerPixel <= 0 {
		return nil, fmt.Errorf("samples per pixel must be positive, got %d", config.SamplesPerPixel)
	}
	if config.MaxDepth <= 0 {
		return nil, fmt.Errorf("max depth must be positive, got %d", config.MaxDepth)
	}

	cameraConfig := s.Camera
	cameraConfig.AspectRatio = config.AspectRatio()
	camera, err := geometry.NewStereoCamera(cameraConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera: %w", err)
	}

	if logger == nil {
		logger = core.NopLogger{}
	}

	return &Raytracer{
		scene:      s,
		camera:     camera,
		integrator: integrator.NewPathTracingIntegrator(config),
		config:     config,
		sampler:    core.NewSeededSampler(42), // Deterministic unless replaced
		logger:     logger,
	}, nil
}

// SetSampler replaces the random source used for jitter and scattering
func (rt *Raytracer) SetSampler(sampler core.Sampler) {
	rt.sampler = sampler
}

// Camera returns the stereo camera built for this render
func (rt *Raytracer) Camera() *geometry.StereoCamera {
	return rt.camera
}

// RenderEye renders a single eye
func (rt *Raytracer) RenderEye(ctx context.Context, side geometry.EyeSide) (*image.RGBA, RenderStats, error) {
	images, stats, err := rt.renderEyes(ctx, []geometry.EyeSide{side})
	if err != nil {
		return nil, stats, err
	}
	return images[0], stats, nil
}

// RenderStereo renders both eyes as needed and composes them for mode
func (rt *Raytracer) RenderStereo(ctx context.Context, mode OutputMode) (*image.RGBA, RenderStats, error) {
	switch mode {
	case ModeLeft:
		return rt.RenderEye(ctx, geometry.LeftEye)
	case ModeRight:
		return rt.RenderEye(ctx, geometry.RightEye)
	case ModeAnaglyph, ModeSideBySide:
	default:
		return nil, RenderStats{}, fmt.Errorf("unknown output mode %q", mode)
	}

	images, stats, err := rt.renderEyes(ctx, []geometry.EyeSide{geometry.LeftEye, geometry.RightEye})
	if err != nil {
		return nil, stats, err
	}

	var img *image.RGBA
	if mode == ModeAnaglyph {
		img, err = ComposeAnaglyph(images[0], images[1])
	} else {
		img, err = ComposeSideBySide(images[0], images[1])
	}
	if err != nil {
		return nil, stats, err
	}
	stats.AverageLuminance = CalculateAverageLuminance(img)
	return img, stats, nil
}

// renderEyes traces every pixel for the given eyes. Scanlines run from the
// top of the image plane (t=1) down, and each sample's jittered (s, t) is
// shared by all eyes so the pair differs only by viewpoint.
func (rt *Raytracer) renderEyes(ctx context.Context, sides []geometry.EyeSide) ([]*image.RGBA, RenderStats, error) {
	startTime := time.Now()
	width, height := rt.config.Width, rt.config.Height

	eyes := make([]geometry.Eye, len(sides))
	images := make([]*image.RGBA, len(sides))
	for e, side := range sides {
		eyes[e] = rt.camera.Eye(side)
		images[e] = image.NewRGBA(image.Rect(0, 0, width, height))
	}

	stats := RenderStats{
		Eyes:            len(sides),
		TotalPixels:     width * height,
		SamplesPerPixel: rt.config.SamplesPerPixel,
	}

	rt.logger.Printf("Rendering %d eye(s) at %dx%d, %d samples per pixel, max depth %d\n",
		len(sides), width, height, rt.config.SamplesPerPixel, rt.config.MaxDepth)

	progressEvery := max(1, height/progressLines)
	pixels := make([]PixelStats, len(sides))
	varianceSum := 0.0

	for j := height - 1; j >= 0; j-- {
		if err := ctx.Err(); err != nil {
			return nil, stats, fmt.Errorf("render cancelled with %d scanlines remaining: %w", j+1, err)
		}
		if (height-1-j)%progressEvery == 0 {
			rt.logger.Printf("Scanlines remaining: %d\n", j+1)
		}

		for i := 0; i < width; i++ {
			for e := range pixels {
				pixels[e] = PixelStats{}
			}

			for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
				jitter := rt.sampler.Get2D()
				s := (float64(i) + jitter.X) / float64(width)
				t := (float64(j) + jitter.Y) / float64(height)

				for e, eye := range eyes {
					radiance := rt.integrator.RayColor(eye.GetRay(s, t, rt.sampler), rt.scene, rt.sampler)
					stats.TotalSamples++
					if !radiance.IsFinite() {
						stats.NonFiniteSamples++
						continue
					}
					pixels[e].AddSample(radiance)
				}
			}

			for e := range eyes {
				images[e].SetRGBA(i, height-1-j, Vec3ToColor(pixels[e].GetColor()))
				variance := pixels[e].Variance()
				varianceSum += variance
				stats.MaxVariance = max(stats.MaxVariance, variance)
			}
		}
	}

	stats.Duration = time.Since(startTime)
	if n := len(sides) * width * height; n > 0 {
		stats.AverageVariance = varianceSum / float64(n)
	}
	if len(images) == 1 {
		stats.AverageLuminance = CalculateAverageLuminance(images[0])
	}
	if stats.NonFiniteSamples > 0 {
		rt.logger.Printf("Warning: dropped %d non-finite samples\n", stats.NonFiniteSamples)
	}
	rt.logger.Printf("Done in %v, mean pixel variance %.4g (max %.4g)\n",
		stats.Duration, stats.AverageVariance, stats.MaxVariance)

	return images, stats, nil
}

// Vec3ToColor converts a linear color to 8-bit RGBA with gamma 2 correction and clamping
func Vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Clamp(0.0, 1.0).Sqrt()

	return color.RGBA{
		R: uint8(255.99 * colorVec.X),
		G: uint8(255.99 * colorVec.Y),
		B: uint8(255.99 * colorVec.Z),
		A: 255,
	}
}
