package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-stereo-raytracer/pkg/core"
	"github.com/df07/go-stereo-raytracer/pkg/geometry"
	"github.com/df07/go-stereo-raytracer/pkg/material"
	"github.com/df07/go-stereo-raytracer/pkg/scene"
)

var (
	white   = core.NewVec3(1, 1, 1)
	skyBlue = core.NewVec3(0.5, 0.7, 1.0)
)

// MockMaterial implements material.Material for testing
type MockMaterial struct {
	scatterFn func(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool)
}

func (m *MockMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	return m.scatterFn(rayIn, hit, sampler)
}

// MockWorld implements World for testing
type MockWorld struct {
	hitFn    func(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool)
	hitCalls int
}

func (m *MockWorld) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	m.hitCalls++
	return m.hitFn(ray, rayT)
}

func (m *MockWorld) BackgroundColors() (core.Vec3, core.Vec3) {
	return skyBlue, white
}

// createTestScene creates a simple scene with a sphere for testing
func createTestScene() *scene.Scene {
	s := scene.NewScene()
	lambertian := material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, lambertian))
	return s
}

func TestRayColor_DepthZeroIsBlack(t *testing.T) {
	sc := createTestScene()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	tests := []struct {
		name string
		ray  core.Ray
	}{
		{"toward sphere", core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))},
		{"toward sky", core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, depth := range []int{0, -1} {
				if c := RayColor(tt.ray, sc, depth, sampler); c != (core.Vec3{}) {
					t.Errorf("Expected black at depth %d, got %v", depth, c)
				}
			}
		})
	}
}

func TestRayColor_MissReturnsSkyGradient(t *testing.T) {
	world := &MockWorld{hitFn: func(core.Ray, core.Interval) (*material.HitRecord, bool) { return nil, false }}
	sampler := core.NewSeededSampler(1)

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight up", core.NewVec3(0, 1, 0), skyBlue},
		{"straight down", core.NewVec3(0, -1, 0), white},
		{"horizon", core.NewVec3(1, 0, 0), core.NewVec3(0.75, 0.85, 1.0)},
		{"unnormalized up", core.NewVec3(0, 10, 0), skyBlue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(0, 0, 0), tt.direction)
			c := RayColor(ray, world, 50, sampler)
			if c.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, c)
			}
		})
	}
}

func TestRayColor_MissStaysBetweenEndpoints(t *testing.T) {
	s := scene.NewScene()
	sampler := core.NewSeededSampler(5)

	for i := 0; i < 200; i++ {
		direction := core.RandomUnitVector(sampler)
		c := RayColor(core.NewRay(core.NewVec3(0, 0, 0), direction), s, 50, sampler)
		if c.X < 0.5-1e-12 || c.X > 1+1e-12 || c.Y < 0.7-1e-12 || c.Y > 1+1e-12 || math.Abs(c.Z-1) > 1e-12 {
			t.Fatalf("Sky color %v outside the white/blue range for %v", c, direction)
		}
	}
}

func TestRayColor_AbsorptionIsBlack(t *testing.T) {
	absorber := &MockMaterial{
		scatterFn: func(core.Ray, material.HitRecord, core.Sampler) (material.ScatterResult, bool) {
			return material.ScatterResult{}, false
		},
	}
	world := &MockWorld{hitFn: func(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
		return &material.HitRecord{T: 1, Point: ray.At(1), Normal: core.NewVec3(0, 0, 1), Material: absorber}, true
	}}

	c := RayColor(core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), world, 50, core.NewSeededSampler(1))
	if c != (core.Vec3{}) {
		t.Errorf("Expected black for absorbed ray, got %v", c)
	}
	if world.hitCalls != 1 {
		t.Errorf("Absorption should stop the path, got %d hit queries", world.hitCalls)
	}
}

func TestRayColor_AttenuationMultipliesPerChannel(t *testing.T) {
	attenuation := core.NewVec3(0.5, 0.25, 0.8)
	bounceUp := &MockMaterial{
		scatterFn: func(rayIn core.Ray, hit material.HitRecord, _ core.Sampler) (material.ScatterResult, bool) {
			return material.ScatterResult{
				Scattered:   core.NewRay(hit.Point, core.NewVec3(0, 1, 0)),
				Attenuation: attenuation,
			}, true
		},
	}

	// Hit only the first downward ray; the upward scatter escapes to the sky
	world := &MockWorld{hitFn: func(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
		if ray.Direction.Y < 0 {
			return &material.HitRecord{T: 1, Point: ray.At(1), Normal: core.NewVec3(0, 1, 0), Material: bounceUp}, true
		}
		return nil, false
	}}

	c := RayColor(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0)), world, 50, core.NewSeededSampler(1))
	expected := attenuation.MultiplyVec(skyBlue)
	if c.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, c)
	}
}

func TestRayColor_DepthBoundsRecursion(t *testing.T) {
	mirror := &MockMaterial{
		scatterFn: func(rayIn core.Ray, hit material.HitRecord, _ core.Sampler) (material.ScatterResult, bool) {
			return material.ScatterResult{Scattered: rayIn, Attenuation: white}, true
		},
	}
	// Every ray hits, so only the depth bound can end the path
	world := &MockWorld{hitFn: func(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
		return &material.HitRecord{T: 1, Point: ray.At(1), Normal: core.NewVec3(0, 0, 1), Material: mirror}, true
	}}

	for _, depth := range []int{1, 5, 50} {
		world.hitCalls = 0
		c := RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), world, depth, core.NewSeededSampler(1))
		if c != (core.Vec3{}) {
			t.Errorf("Depth %d: trapped path should be black, got %v", depth, c)
		}
		if world.hitCalls != depth {
			t.Errorf("Depth %d: expected %d hit queries, got %d", depth, depth, world.hitCalls)
		}
	}
}

func TestRayColor_UsesAcneEpsilon(t *testing.T) {
	var seen core.Interval
	world := &MockWorld{hitFn: func(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
		seen = rayT
		return nil, false
	}}

	RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), world, 1, core.NewSeededSampler(1))
	if seen.Min != ShadowAcneEpsilon || seen.Max != math.MaxFloat64 {
		t.Errorf("Expected query interval (0.001, MaxFloat64), got %+v", seen)
	}
}

func TestPathTracingIntegrator_RealScene(t *testing.T) {
	sc := createTestScene()
	integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: 10})
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	// Lambertian albedo caps every channel below the sky's brightest value
	const samples = 500
	sum := core.Vec3{}
	for i := 0; i < samples; i++ {
		c := integrator.RayColor(ray, sc, sampler)
		if !c.IsFinite() || c.X < 0 || c.Y < 0 || c.Z < 0 {
			t.Fatalf("Invalid radiance %v", c)
		}
		if c.X > 0.7+1e-9 || c.Y > 0.3+1e-9 || c.Z > 0.3+1e-9 {
			t.Fatalf("Radiance %v exceeds albedo times sky", c)
		}
		sum = sum.Add(c)
	}

	mean := sum.Divide(samples)
	if mean.X <= 0 {
		t.Errorf("Lit sphere should not average to black, got %v", mean)
	}
	if mean.X <= mean.Y {
		t.Errorf("Red albedo should dominate, got %v", mean)
	}
}
