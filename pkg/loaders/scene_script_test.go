package loaders

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-stereo-raytracer/pkg/core"
	"github.com/df07/go-stereo-raytracer/pkg/geometry"
	"github.com/df07/go-stereo-raytracer/pkg/material"
)

func TestLoadSceneScript_Empty(t *testing.T) {
	for _, source := range []string{"", "   \n\t"} {
		s, err := LoadSceneScript(source, nil)
		if err != nil {
			t.Fatalf("Empty script should load: %v", err)
		}
		if s.GetPrimitiveCount() != 0 {
			t.Errorf("Expected no shapes, got %d", s.GetPrimitiveCount())
		}
	}
}

func TestLoadSceneScript_BuildsScene(t *testing.T) {
	source := `
(render 200 100 8 10)
(camera (vec3 13 2 3) (vec3 0 0 0) (vec3 0 1 0) 20 0.6 10 0.06)
(sky (vec3 0.4 0.6 0.9) (vec3 0.9 0.9 0.9))

(def ground (lambertian (vec3 0.5 0.5 0.5)))
(sphere (vec3 0 -1000 0) 1000 ground)
(sphere (vec3 4 1 0) 1.0 (metal (vec3 0.7 0.6 0.5) 0))
(sphere (vec3 0 1 0) 1 (dielectric 1.5))
(sphere (vec3 -4 1 0) 1 (dielectric 1.5 (vec3 1 0.8 0.8)))
`
	s, err := LoadSceneScript(source, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if s.Sampling.Width != 200 || s.Sampling.Height != 100 || s.Sampling.SamplesPerPixel != 8 || s.Sampling.MaxDepth != 10 {
		t.Errorf("Unexpected sampling %+v", s.Sampling)
	}

	expectedCamera := geometry.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20,
		AspectRatio:   2,
		EyeSeparation: 0.06,
		DefocusAngle:  0.6,
		FocusDistance: 10,
	}
	if s.Camera != expectedCamera {
		t.Errorf("Camera = %+v, want %+v", s.Camera, expectedCamera)
	}

	if !s.TopColor.Equals(core.NewVec3(0.4, 0.6, 0.9)) || !s.BottomColor.Equals(core.NewVec3(0.9, 0.9, 0.9)) {
		t.Errorf("Unexpected sky %v / %v", s.TopColor, s.BottomColor)
	}

	if s.GetPrimitiveCount() != 4 {
		t.Fatalf("Expected 4 spheres, got %d", s.GetPrimitiveCount())
	}
	census := s.MaterialCensus()
	if census["lambertian"] != 1 || census["metal"] != 1 || census["dielectric"] != 2 {
		t.Errorf("Unexpected census %v", census)
	}

	tinted := s.Shapes[3].(*geometry.Sphere).Material.(*material.Dielectric)
	if !tinted.Albedo.Equals(core.NewVec3(1, 0.8, 0.8)) || tinted.RefractiveIndex != 1.5 {
		t.Errorf("Unexpected tinted glass %+v", tinted)
	}
	clearGlass := s.Shapes[2].(*geometry.Sphere).Material.(*material.Dielectric)
	if !clearGlass.Albedo.Equals(core.NewVec3(1, 1, 1)) {
		t.Errorf("Glass without albedo should be clear, got %v", clearGlass.Albedo)
	}
}

func TestLoadSceneScript_SharedMaterial(t *testing.T) {
	source := `
(def glass (dielectric 1.5))
(sphere (vec3 0 0 -1) 0.5 glass)
(sphere (vec3 1 0 -1) 0.5 glass)
(sphere (vec3 2 0 -1) 0.5 glass)
`
	s, err := LoadSceneScript(source, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.DistinctMaterials() != 1 {
		t.Errorf("Expected one shared material, got %d", s.DistinctMaterials())
	}
}

func TestLoadSceneScript_PartialCameraKeepsDefaults(t *testing.T) {
	s, err := LoadSceneScript(`(camera (vec3 0 0 5) (vec3 0 0 0) (vec3 0 1 0) 45)`, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defaults := geometry.DefaultCameraConfig()
	if s.Camera.VFov != 45 {
		t.Errorf("Expected vfov 45, got %f", s.Camera.VFov)
	}
	if s.Camera.FocusDistance != defaults.FocusDistance || s.Camera.EyeSeparation != defaults.EyeSeparation {
		t.Errorf("Omitted camera arguments should keep defaults: %+v", s.Camera)
	}
}

func TestLoadSceneScript_SemicolonComments(t *testing.T) {
	source := `;; header comment
(sphere (vec3 0 0 -1) 0.5 (lambertian (vec3 0.5 0.5 0.5))) ; trailing comment
`
	s, err := LoadSceneScript(source, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.GetPrimitiveCount() != 1 {
		t.Errorf("Expected 1 sphere, got %d", s.GetPrimitiveCount())
	}
}

func TestLoadSceneScript_Errors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains string
	}{
		{"vec3 arity", `(vec3 1 2)`, "vec3 requires exactly 3 arguments"},
		{"vec3 type", `(vec3 1 2 "z")`, "vec3: z"},
		{"sphere needs material", `(sphere (vec3 0 0 0) 1 (vec3 1 1 1))`, "sphere: material"},
		{"zero radius", `(sphere (vec3 0 0 0) 0 (lambertian (vec3 1 1 1)))`, "radius must be non-zero"},
		{"metal arity", `(metal (vec3 1 1 1))`, "metal requires exactly 2 arguments"},
		{"dielectric ior", `(dielectric 0)`, "ior must be positive"},
		{"render float", `(render 10.5 10 1 1)`, "render: width"},
		{"render negative", `(render 10 10 0 1)`, "samples must be positive"},
		{"camera degenerate", `(camera (vec3 0 0 0) (vec3 0 0 0) (vec3 0 1 0) 40)`, "coincide"},
		{"camera arity", `(camera (vec3 0 0 0) (vec3 0 0 -1))`, "camera requires 4 to 7 arguments"},
		{"unknown function", `(cube 1 2 3)`, ""},
		{"unbalanced parens", `(sphere (vec3 0 0 0) 1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := LoadSceneScript(tt.source, nil)
			if err == nil {
				t.Fatalf("Expected error, got scene with %d shapes", s.GetPrimitiveCount())
			}
			var scriptErr *ScriptError
			if !errors.As(err, &scriptErr) {
				t.Errorf("Expected *ScriptError, got %T: %v", err, err)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Error %q should mention %q", err, tt.contains)
			}
		})
	}
}

func TestLoadSceneScript_LogsSummary(t *testing.T) {
	logger := &capturingLogger{}
	_, err := LoadSceneScript(`(sphere (vec3 0 0 -1) 0.5 (metal (vec3 1 1 1) 0))`, logger)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := "Loaded scene script: 1 spheres (1 metal), 1 distinct materials, extents (-0.5, -0.5, -1.5) to (0.5, 0.5, -0.5)\n"
	if len(logger.messages) != 1 || logger.messages[0] != want {
		t.Errorf("Expected summary log line %q, got %q", want, logger.messages)
	}
}

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"; comment", "// comment"},
		{";; double", "// double"},
		{`(def s "a;b") ; tail`, `(def s "a;b") // tail`},
		{"(vec3 1 2 3)", "(vec3 1 2 3)"},
		{`"escaped \" ;" ; x`, `"escaped \" ;" // x`},
		{"(def s `a;b`) ; tail", "(def s `a;b`) // tail"},
		{"`raw \\` ; x", "`raw \\` // x"},
	}

	for _, tt := range tests {
		if got := preprocessSource(tt.input); got != tt.expected {
			t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestParseZygomysError(t *testing.T) {
	err := parseZygomysError(errors.New("Error on line 7: unexpected token"))
	if err.Line != 7 || err.Message != "unexpected token" {
		t.Errorf("Unexpected parse %+v", err)
	}
	if !strings.Contains(err.Error(), "line 7") {
		t.Errorf("Error string should include line: %q", err.Error())
	}

	plain := parseZygomysError(errors.New("something broke"))
	if plain.Line != 0 || plain.Message != "something broke" {
		t.Errorf("Unexpected parse %+v", plain)
	}
}

func TestLoadSceneFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.zy")
	if err := os.WriteFile(path, []byte(`(sphere (vec3 0 0 -1) 0.5 (lambertian (vec3 1 0 0)))`), 0644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	s, err := LoadSceneFile(path, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.GetPrimitiveCount() != 1 {
		t.Errorf("Expected 1 sphere, got %d", s.GetPrimitiveCount())
	}

	if _, err := LoadSceneFile(filepath.Join(t.TempDir(), "missing.zy"), nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestLoadSceneFile_BundledScripts(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "scenes", "*.zy"))
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(files) == 0 {
		t.Skip("no bundled scene scripts")
	}

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadSceneFile(path, nil)
			if err != nil {
				t.Fatalf("Failed to load %s: %v", path, err)
			}
			if s.GetPrimitiveCount() == 0 {
				t.Errorf("%s builds an empty scene", path)
			}
			if _, err := geometry.NewStereoCamera(s.Camera); err != nil {
				t.Errorf("%s has an invalid camera: %v", path, err)
			}
		})
	}
}

type capturingLogger struct {
	messages []string
}

func (l *capturingLogger) Printf(format string, args ...interface{}) {
	l.messages = append(l.messages, fmt.Sprintf(format, args...))
}

func TestLoadSceneScript_RawStringKeepsSemicolon(t *testing.T) {
	source := "(def label `a;b`)\n(sphere (vec3 0 0 -1) 0.5 (lambertian (vec3 1 1 1)))"
	if got := preprocessSource(source); got != source {
		t.Fatalf("Raw string was rewritten: %q", got)
	}
	s, err := LoadSceneScript(source, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.GetPrimitiveCount() != 1 {
		t.Errorf("Expected 1 sphere, got %d", s.GetPrimitiveCount())
	}
}

func TestLoadSceneScript_TimeoutStopsEvaluation(t *testing.T) {
	saved := EvalTimeout
	EvalTimeout = 200 * time.Millisecond
	t.Cleanup(func() { EvalTimeout = saved })

	baseline := runtime.NumGoroutine()

	_, err := LoadSceneScript(`(for [(set i 0) true (set i (+ i 1))] i)`, nil)
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("Expected timeout error, got %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > baseline {
		if time.Now().After(deadline) {
			t.Fatalf("Script goroutines still running: %d, started with %d", runtime.NumGoroutine(), baseline)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
