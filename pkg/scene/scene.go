package scene

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/df07/go-stereo-raytracer/pkg/core"
	"github.com/df07/go-stereo-raytracer/pkg/geometry"
	"github.com/df07/go-stereo-raytracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Shapes      []geometry.Shape      // Objects in the scene, tested in order
	Camera      geometry.CameraConfig // Stereo camera setup
	Sampling    SamplingConfig
	TopColor    core.Vec3 // Sky color straight up
	BottomColor core.Vec3 // Sky color straight down
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width of one eye
	Height          int // Image height of one eye
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// AspectRatio returns width / height
func (c SamplingConfig) AspectRatio() float64 {
	return float64(c.Width) / float64(c.Height)
}

// NewScene creates an empty scene with the default camera, sampling and sky
func NewScene() *Scene {
	return &Scene{
		Shapes:      make([]geometry.Shape, 0),
		Camera:      geometry.DefaultCameraConfig(),
		Sampling:    DefaultSamplingConfig(),
		TopColor:    core.NewVec3(0.5, 0.7, 1.0),
		BottomColor: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// Add appends shapes to the scene. Shapes must not be added while rendering.
func (s *Scene) Add(shapes ...geometry.Shape) {
	s.Shapes = append(s.Shapes, shapes...)
}

// Hit returns the nearest intersection over all shapes with t strictly inside rayT
func (s *Scene) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := rayT.Max

	for _, shape := range s.Shapes {
		if hit, isHit := shape.Hit(ray, core.NewInterval(rayT.Min, closestSoFar)); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

// BackgroundColors returns the sky gradient endpoints
func (s *Scene) BackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.TopColor, s.BottomColor
}

// GetPrimitiveCount returns the number of shapes in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Shapes)
}

// MaterialCensus counts shapes by material kind
func (s *Scene) MaterialCensus() map[string]int {
	return lo.CountValuesBy(s.Shapes, func(shape geometry.Shape) string {
		if sphere, ok := shape.(*geometry.Sphere); ok {
			return material.Kind(sphere.Material)
		}
		return "unknown"
	})
}

// DistinctMaterials returns the number of distinct material instances.
// Shared materials are counted once.
func (s *Scene) DistinctMaterials() int {
	materials := lo.FilterMap(s.Shapes, func(shape geometry.Shape, _ int) (material.Material, bool) {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok || sphere.Material == nil {
			return nil, false
		}
		return sphere.Material, true
	})
	return len(lo.Uniq(materials))
}

// BoundingBox returns the box enclosing every shape
func (s *Scene) BoundingBox() core.BBox {
	return lo.Reduce(s.Shapes, func(box core.BBox, shape geometry.Shape, _ int) core.BBox {
		return box.Union(shape.BoundingBox())
	}, core.EmptyBBox())
}

// Summary describes the scene on one line for logs
func (s *Scene) Summary() string {
	if len(s.Shapes) == 0 {
		return "0 spheres"
	}

	census := s.MaterialCensus()
	kinds := lo.Keys(census)
	// map order is random; keep log lines stable
	sort.Strings(kinds)
	counts := lo.Map(kinds, func(kind string, _ int) string {
		return fmt.Sprintf("%d %s", census[kind], kind)
	})

	box := s.BoundingBox()
	return fmt.Sprintf("%d spheres (%s), %d distinct materials, extents (%g, %g, %g) to (%g, %g, %g)",
		s.GetPrimitiveCount(), strings.Join(counts, ", "), s.DistinctMaterials(),
		box.X.Min, box.Y.Min, box.Z.Min, box.X.Max, box.Y.Max, box.Z.Max)
}
