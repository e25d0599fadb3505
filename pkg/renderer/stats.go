package renderer

import (
	"image"
	"time"

	"github.com/df07/go-stereo-raytracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Eyes             int           // Number of eyes traced
	TotalPixels      int           // Pixels per eye
	TotalSamples     int           // Samples taken across all eyes
	SamplesPerPixel  int           // Samples per pixel per eye
	NonFiniteSamples int           // Samples dropped for NaN or Inf radiance
	AverageLuminance float64       // Mean luminance of the encoded output
	AverageVariance  float64       // Mean per-pixel luminance variance (noise estimate)
	MaxVariance      float64       // Noisiest pixel's luminance variance
	Duration         time.Duration // Wall time of the render
}

// PixelStats tracks sampling statistics for a single pixel
type PixelStats struct {
	ColorAccum       core.Vec3 // RGB accumulator for final result
	LuminanceAccum   float64   // Luminance accumulator
	LuminanceSqAccum float64   // Luminance squared for variance
	SampleCount      int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	luminance := color.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// Variance returns the sample variance of the pixel's luminance
func (ps *PixelStats) Variance() float64 {
	if ps.SampleCount < 2 {
		return 0
	}
	n := float64(ps.SampleCount)
	mean := ps.LuminanceAccum / n
	return (ps.LuminanceSqAccum - n*mean*mean) / (n - 1)
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image,
// treating 8-bit channel values as [0,1]
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			total += core.NewVec3(float64(c.R), float64(c.G), float64(c.B)).Divide(255).Luminance()
		}
	}
	return total / float64(pixels)
}
