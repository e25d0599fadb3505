package loaders

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/df07/go-stereo-raytracer/pkg/core"
	"github.com/df07/go-stereo-raytracer/pkg/geometry"
	"github.com/df07/go-stereo-raytracer/pkg/material"
	"github.com/df07/go-stereo-raytracer/pkg/scene"
)

// EvalTimeout bounds how long a scene script may run. A script still running
// at the deadline is aborted at its next function call; a loop that calls no
// functions at all cannot be interrupted and keeps its goroutine busy.
var EvalTimeout = 5 * time.Second

// errEvalAborted unwinds a script whose deadline has passed
var errEvalAborted = errors.New("scene script evaluation aborted")

// ScriptError is a parse or evaluation failure in a scene script
type ScriptError struct {
	Line    int
	Message string
}

func (e *ScriptError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("scene script line %d: %s", e.Line, e.Message)
	}
	return "scene script: " + e.Message
}

// LoadSceneFile reads and evaluates a scene script from disk
func LoadSceneFile(path string, logger core.Logger) (*scene.Scene, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene script: %w", err)
	}
	s, err := LoadSceneScript(string(source), logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// LoadSceneScript evaluates a zygomys scene script and returns the scene it builds.
//
// Scripts call these builtins; numbers may be ints or floats:
//
//	(vec3 x y z)
//	(lambertian albedo)
//	(metal albedo fuzz)
//	(dielectric ior [albedo])
//	(sphere center radius material)
//	(camera lookfrom lookat up vfov [defocus-angle [focus-distance [eye-separation]]])
//	(sky top bottom)
//	(render width height samples depth)
//
// Materials are values, so binding one with def and passing it to several
// spheres shares a single instance. Both ; and // start a line comment.
func LoadSceneScript(source string, logger core.Logger) (*scene.Scene, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), EvalTimeout)
	defer cancel()

	type result struct {
		scene *scene.Scene
		err   error
	}
	ch := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("panic during scene script evaluation: %v", r)}
			}
		}()
		s, err := evaluate(ctx, source)
		ch <- result{scene: s, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		logger.Printf("Loaded scene script: %s\n", res.scene.Summary())
		return res.scene, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("scene script timed out after %s", EvalTimeout)
	}
}

func evaluate(ctx context.Context, source string) (*scene.Scene, error) {
	s := scene.NewScene()
	if strings.TrimSpace(source) == "" {
		return s, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := &sceneBuilder{scene: s}
	b.register(env)
	env.AddPreHook(func(*zygo.Zlisp, string, []zygo.Sexp) {
		if ctx.Err() != nil {
			panic(errEvalAborted)
		}
	})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err)
	}

	s.Camera.AspectRatio = s.Sampling.AspectRatio()
	return s, nil
}

// preprocessSource rewrites ; line comments to the // form zygomys expects,
// leaving quoted and backtick raw string literals alone
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source))
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch b[i] {
		case '"', '`':
			quote := b[i]
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != quote {
				// raw strings have no escapes
				if quote == '"' && b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
		case ';':
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
		default:
			result = append(result, b[i])
			i++
		}
	}
	return string(result)
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

func parseZygomysError(err error) *ScriptError {
	msg := err.Error()
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return &ScriptError{Line: line, Message: strings.TrimSpace(m[2])}
	}
	return &ScriptError{Message: strings.TrimSpace(msg)}
}

// sexpVec3 carries a vector between builtins
type sexpVec3 struct {
	vec core.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpMaterial carries a shared material between builtins
type sexpMaterial struct {
	mat material.Material
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s)", material.Kind(m.mat))
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

// sexpSphere is returned by (sphere ...) so scripts can print it
type sexpSphere struct {
	sphere *geometry.Sphere
}

func (s *sexpSphere) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(sphere %v %g %s)", s.sphere.Center, s.sphere.Radius, material.Kind(s.sphere.Material))
}
func (s *sexpSphere) Type() *zygo.RegisteredType { return nil }

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (core.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return core.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toMaterial(s zygo.Sexp) (material.Material, error) {
	if m, ok := s.(*sexpMaterial); ok {
		return m.mat, nil
	}
	return nil, fmt.Errorf("expected material, got %T (%s)", s, s.SexpString(nil))
}

func checkArity(name string, args []zygo.Sexp, minArgs, maxArgs int) error {
	if len(args) < minArgs || len(args) > maxArgs {
		if minArgs == maxArgs {
			return fmt.Errorf("%s requires exactly %d arguments, got %d", name, minArgs, len(args))
		}
		return fmt.Errorf("%s requires %d to %d arguments, got %d", name, minArgs, maxArgs, len(args))
	}
	return nil
}

// floats converts every argument to a number, naming the offending position on error
func floats(name string, args []zygo.Sexp, labels ...string) ([]float64, error) {
	values := make([]float64, len(args))
	for i, arg := range args {
		f, err := toFloat64(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", name, labels[i], err)
		}
		values[i] = f
	}
	return values, nil
}
