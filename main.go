package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/df07/go-stereo-raytracer/pkg/core"
	"github.com/df07/go-stereo-raytracer/pkg/loaders"
	"github.com/df07/go-stereo-raytracer/pkg/output"
	"github.com/df07/go-stereo-raytracer/pkg/renderer"
	"github.com/df07/go-stereo-raytracer/pkg/scene"
)

const scenesDir = "scenes"

type options struct {
	sceneName string
	width     int
	height    int
	samples   int
	depth     int
	mode      string
	format    string
	out       string
	seed      int64
	eyeSep    float64
	preview   int
}

func main() {
	var opts options
	flag.StringVar(&opts.sceneName, "scene", "simple", "Built-in scene name or path to a .zy scene script")
	flag.IntVar(&opts.width, "width", 0, "Image width per eye (0 = scene default)")
	flag.IntVar(&opts.height, "height", 0, "Image height (0 = scene default)")
	flag.IntVar(&opts.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	flag.IntVar(&opts.depth, "depth", 0, "Maximum bounce depth (0 = scene default)")
	flag.StringVar(&opts.mode, "mode", string(renderer.ModeAnaglyph), "Output mode: anaglyph, side-by-side, left or right")
	flag.StringVar(&opts.format, "format", "", "Image format: png, bmp, tiff or ppm (default from -out extension, else png)")
	flag.StringVar(&opts.out, "out", "", "Output file (default output/<scene>/render_<timestamp>.<ext>)")
	flag.Int64Var(&opts.seed, "seed", 42, "Random seed for sampling and randomized scenes")
	flag.Float64Var(&opts.eyeSep, "eye-sep", -1, "Eye separation override (negative = scene default)")
	flag.IntVar(&opts.preview, "preview", 0, "Also write a PNG preview at most this many pixels wide")
	list := flag.Bool("list", false, "List available scenes and exit")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Stereo Raytracer")
		fmt.Println("Usage: raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		printScenes()
		fmt.Println()
		fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.<ext> unless -out is set")
		return
	}

	if *list {
		printScenes()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := renderer.NewPrefixedLogger(uuid.NewString()[:8])
	if err := run(ctx, opts, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger core.Logger) error {
	mode, err := renderer.ParseOutputMode(opts.mode)
	if err != nil {
		return err
	}

	outPath, format, err := resolveOutput(opts, time.Now())
	if err != nil {
		return err
	}

	logger.Printf("Loading scene %s...\n", opts.sceneName)
	s, err := createScene(opts.sceneName, opts.seed, logger)
	if err != nil {
		return err
	}
	applyOverrides(s, opts)
	logger.Printf("Scene: %s\n", s.Summary())

	rt, err := renderer.NewRaytracer(s, logger)
	if err != nil {
		return errors.Wrap(err, "set up renderer")
	}
	rt.SetSampler(core.NewSeededSampler(opts.seed))
	camera := rt.Camera().Config()
	logger.Printf("Camera at %v looking at %v, eye separation %g\n",
		camera.LookFrom, camera.LookAt, camera.EyeSeparation)

	logger.Printf("Rendering %dx%d, %d samples, depth %d, mode %s\n",
		s.Sampling.Width, s.Sampling.Height, s.Sampling.SamplesPerPixel, s.Sampling.MaxDepth, mode)
	img, stats, err := rt.RenderStereo(ctx, mode)
	if err != nil {
		return errors.Wrap(err, "render")
	}

	logger.Printf("Render completed in %v (%d eyes, %d samples, avg luminance %.3f, mean pixel variance %.4g)\n",
		stats.Duration, stats.Eyes, stats.TotalSamples, stats.AverageLuminance, stats.AverageVariance)
	if stats.NonFiniteSamples > 0 {
		logger.Printf("Dropped %d non-finite samples\n", stats.NonFiniteSamples)
	}

	if err := output.Save(outPath, img, format); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", outPath)

	if opts.preview > 0 {
		previewPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + "_preview.png"
		if err := output.Save(previewPath, output.Thumbnail(img, opts.preview), output.FormatPNG); err != nil {
			return err
		}
		logger.Printf("Preview saved as %s\n", previewPath)
	}
	return nil
}

// createScene resolves name to a built-in scene, a script path, or a script
// in the scenes directory, in that order
func createScene(name string, seed int64, logger core.Logger) (*scene.Scene, error) {
	if name == "" {
		return nil, errors.New("no scene given")
	}

	if filepath.Ext(name) == scene.ScriptExtension {
		s, err := loaders.LoadSceneFile(name, logger)
		if err != nil {
			return nil, errors.Wrapf(err, "load scene script %s", name)
		}
		return s, nil
	}

	build, lookupErr := scene.Lookup(name)
	if lookupErr == nil {
		return build(seed), nil
	}

	scriptPath := filepath.Join(scenesDir, name+scene.ScriptExtension)
	if _, err := os.Stat(scriptPath); err == nil {
		s, err := loaders.LoadSceneFile(scriptPath, logger)
		if err != nil {
			return nil, errors.Wrapf(err, "load scene script %s", scriptPath)
		}
		return s, nil
	}
	return nil, lookupErr
}

// applyOverrides writes the non-default command line values into s
func applyOverrides(s *scene.Scene, opts options) {
	if opts.width > 0 {
		s.Sampling.Width = opts.width
	}
	if opts.height > 0 {
		s.Sampling.Height = opts.height
	}
	if opts.samples > 0 {
		s.Sampling.SamplesPerPixel = opts.samples
	}
	if opts.depth > 0 {
		s.Sampling.MaxDepth = opts.depth
	}
	if opts.eyeSep >= 0 {
		s.Camera.EyeSeparation = opts.eyeSep
	}
}

// resolveOutput picks the output path and format. An explicit -format wins
// over the -out extension.
func resolveOutput(opts options, now time.Time) (string, output.Format, error) {
	var format output.Format
	var err error
	switch {
	case opts.format != "":
		format, err = output.ParseFormat(opts.format)
	case opts.out != "":
		format, err = output.FormatFromPath(opts.out)
	default:
		format = output.FormatPNG
	}
	if err != nil {
		return "", "", err
	}

	if opts.out != "" {
		return opts.out, format, nil
	}
	filename := fmt.Sprintf("render_%s%s", now.Format("20060102_150405"), format.Extension())
	return filepath.Join(createOutputDir(opts.sceneName), filename), format, nil
}

// createOutputDir names the per-scene output directory
func createOutputDir(sceneName string) string {
	base := strings.TrimSuffix(filepath.Base(sceneName), filepath.Ext(sceneName))
	return filepath.Join("output", base)
}

func printScenes() {
	groups, err := scene.ListAllScenes(scenesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing scenes: %v\n", err)
		return
	}
	fmt.Println("Available scenes:")
	for _, group := range groups {
		fmt.Printf("  %s:\n", group.Name)
		for _, info := range group.Scenes {
			fmt.Printf("    %-16s %s\n", info.ID, info.Description)
		}
	}
}
