package loaders

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/df07/go-stereo-raytracer/pkg/core"
	"github.com/df07/go-stereo-raytracer/pkg/geometry"
	"github.com/df07/go-stereo-raytracer/pkg/material"
	"github.com/df07/go-stereo-raytracer/pkg/scene"
)

// sceneBuilder collects the effects of builtin calls into a scene
type sceneBuilder struct {
	scene *scene.Scene
}

func (b *sceneBuilder) register(env *zygo.Zlisp) {
	env.AddFunction("vec3", b.vec3)
	env.AddFunction("lambertian", b.lambertian)
	env.AddFunction("metal", b.metal)
	env.AddFunction("dielectric", b.dielectric)
	env.AddFunction("sphere", b.sphere)
	env.AddFunction("camera", b.camera)
	env.AddFunction("sky", b.sky)
	env.AddFunction("render", b.render)
}

// (vec3 1 2 3)
func (b *sceneBuilder) vec3(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := checkArity(name, args, 3, 3); err != nil {
		return zygo.SexpNull, err
	}
	v, err := floats(name, args, "x", "y", "z")
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpVec3{vec: core.NewVec3(v[0], v[1], v[2])}, nil
}

// (lambertian (vec3 0.8 0.8 0.8))
func (b *sceneBuilder) lambertian(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := checkArity(name, args, 1, 1); err != nil {
		return zygo.SexpNull, err
	}
	albedo, err := toVec3(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("lambertian: albedo: %w", err)
	}
	return &sexpMaterial{mat: material.NewLambertian(albedo)}, nil
}

// (metal (vec3 0.8 0.6 0.2) 0.1)
func (b *sceneBuilder) metal(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := checkArity(name, args, 2, 2); err != nil {
		return zygo.SexpNull, err
	}
	albedo, err := toVec3(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("metal: albedo: %w", err)
	}
	fuzz, err := toFloat64(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("metal: fuzz: %w", err)
	}
	return &sexpMaterial{mat: material.NewMetal(albedo, fuzz)}, nil
}

// (dielectric 1.5) or (dielectric 1.5 (vec3 1 0.8 0.8))
func (b *sceneBuilder) dielectric(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := checkArity(name, args, 1, 2); err != nil {
		return zygo.SexpNull, err
	}
	ior, err := toFloat64(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("dielectric: ior: %w", err)
	}
	if ior <= 0 {
		return zygo.SexpNull, fmt.Errorf("dielectric: ior must be positive, got %g", ior)
	}
	if len(args) == 1 {
		return &sexpMaterial{mat: material.NewClearDielectric(ior)}, nil
	}
	albedo, err := toVec3(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("dielectric: albedo: %w", err)
	}
	return &sexpMaterial{mat: material.NewDielectric(ior, albedo)}, nil
}

// (sphere (vec3 0 0 -1) 0.5 mat)
func (b *sceneBuilder) sphere(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := checkArity(name, args, 3, 3); err != nil {
		return zygo.SexpNull, err
	}
	center, err := toVec3(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("sphere: center: %w", err)
	}
	radius, err := toFloat64(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
	}
	if radius == 0 {
		return zygo.SexpNull, fmt.Errorf("sphere: radius must be non-zero")
	}
	mat, err := toMaterial(args[2])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("sphere: material: %w", err)
	}

	s := geometry.NewSphere(center, radius, mat)
	b.scene.Add(s)
	return &sexpSphere{sphere: s}, nil
}

// (camera lookfrom lookat up vfov [defocus-angle [focus-distance [eye-separation]]])
// Omitted trailing arguments keep their defaults.
func (b *sceneBuilder) camera(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := checkArity(name, args, 4, 7); err != nil {
		return zygo.SexpNull, err
	}

	config := b.scene.Camera
	vectors := []*core.Vec3{&config.LookFrom, &config.LookAt, &config.Up}
	labels := []string{"lookfrom", "lookat", "up"}
	for i, target := range vectors {
		v, err := toVec3(args[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("camera: %s: %w", labels[i], err)
		}
		*target = v
	}

	scalars, err := floats(name, args[3:], "vfov", "defocus-angle", "focus-distance", "eye-separation")
	if err != nil {
		return zygo.SexpNull, err
	}
	fields := []*float64{&config.VFov, &config.DefocusAngle, &config.FocusDistance, &config.EyeSeparation}
	for i, value := range scalars {
		*fields[i] = value
	}

	// AspectRatio is fixed up from the render resolution afterwards
	config.AspectRatio = b.scene.Sampling.AspectRatio()
	if err := config.Validate(); err != nil {
		return zygo.SexpNull, err
	}
	b.scene.Camera = config
	return zygo.SexpNull, nil
}

// (sky (vec3 0.5 0.7 1.0) (vec3 1 1 1))
func (b *sceneBuilder) sky(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := checkArity(name, args, 2, 2); err != nil {
		return zygo.SexpNull, err
	}
	top, err := toVec3(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("sky: top: %w", err)
	}
	bottom, err := toVec3(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("sky: bottom: %w", err)
	}
	b.scene.TopColor, b.scene.BottomColor = top, bottom
	return zygo.SexpNull, nil
}

// (render 400 225 100 50)
func (b *sceneBuilder) render(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if err := checkArity(name, args, 4, 4); err != nil {
		return zygo.SexpNull, err
	}
	labels := []string{"width", "height", "samples", "depth"}
	values := make([]int, len(args))
	for i, arg := range args {
		v, err := toInt(arg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("render: %s: %w", labels[i], err)
		}
		if v <= 0 {
			return zygo.SexpNull, fmt.Errorf("render: %s must be positive, got %d", labels[i], v)
		}
		values[i] = v
	}
	b.scene.Sampling = scene.SamplingConfig{
		Width:           values[0],
		Height:          values[1],
		SamplesPerPixel: values[2],
		MaxDepth:        values[3],
	}
	return zygo.SexpNull, nil
}
