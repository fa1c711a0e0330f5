package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/golang/glog"
	"golang.org/x/term"

	"github.com/df07/go-light-transport/pkg/geometry"
	"github.com/df07/go-light-transport/pkg/integrator"
	"github.com/df07/go-light-transport/pkg/loaders"
	"github.com/df07/go-light-transport/pkg/renderer"
	"github.com/df07/go-light-transport/pkg/scene"
)

var (
	sceneName      = flag.String("scene", "cornell", "Built-in scene to render (see -list).")
	integratorName = flag.String("integrator", "", "Estimator override, one of the names printed by -list.")
	samples        = flag.Int("spp", 0, "Samples per pixel, 0 keeps the scene default.")
	width          = flag.Int("width", 0, "Image width in pixels, 0 keeps the scene default.")
	height         = flag.Int("height", 0, "Image height in pixels, needs -width.")
	tileSize       = flag.Int("tile", 0, "Tile edge length in pixels, 0 keeps the scene default.")
	workers        = flag.Int("workers", 0, "Render workers, 0 uses one per CPU.")
	variance       = flag.Bool("variance", true, "Track per-pixel variance and write it next to the render.")
	photons        = flag.Int("photons", 0, "Photons to deposit for photon_mapper, 0 keeps the scene default.")
	photonRadius   = flag.Float64("photon-radius", 0, "Photon gather radius, 0 derives one from the scene extent.")
	maxDepth       = flag.Int("max-depth", -1, "Maximum path vertices, 0 for unlimited, -1 keeps the scene default.")
	assets         = flag.String("assets", "assets", "Directory searched for environment maps and voxel grids.")
	envMap         = flag.String("envmap", "", "Environment image for the environment scene.")
	gridPath       = flag.String("grid", "", "Voxel grid for the smoke scene.")
	outputDir      = flag.String("output", "output", "Directory the images are written to.")
	filterName     = flag.String("filter", "gaussian", "Reconstruction filter, gaussian or box.")
	list           = flag.Bool("list", false, "List built-in scenes and estimators, then exit.")
)

// overrides holds the command line settings applied on top of a built scene
type overrides struct {
	Integrator   string
	Samples      int
	Width        int
	Height       int
	TileSize     int
	Variance     bool
	Photons      int
	PhotonRadius float64
	MaxDepth     int // -1 keeps the scene value
}

func overridesFromFlags() overrides {
	return overrides{
		Integrator:   *integratorName,
		Samples:      *samples,
		Width:        *width,
		Height:       *height,
		TileSize:     *tileSize,
		Variance:     *variance,
		Photons:      *photons,
		PhotonRadius: *photonRadius,
		MaxDepth:     *maxDepth,
	}
}

// cameraOverride turns -width and -height into a camera config for scene.Build
func (o overrides) cameraOverride() geometry.CameraConfig {
	var cfg geometry.CameraConfig
	if o.Width > 0 {
		cfg.Width = o.Width
		if o.Height > 0 {
			cfg.AspectRatio = float64(o.Width) / float64(o.Height)
		}
	}
	return cfg
}

// apply copies the command line settings into the scene configs
func (o overrides) apply(sc *scene.Scene) {
	if o.Integrator != "" {
		sc.IntegratorConfig.Type = o.Integrator
	}
	if o.Samples > 0 {
		sc.SamplingConfig.SamplesPerPixel = o.Samples
	}
	if o.TileSize > 0 {
		sc.SamplingConfig.TileSize = o.TileSize
	}
	sc.SamplingConfig.ComputeVariance = o.Variance
	if o.Photons > 0 {
		sc.IntegratorConfig.PhotonCount = o.Photons
	}
	if o.PhotonRadius > 0 {
		sc.IntegratorConfig.PhotonRadius = o.PhotonRadius
	}
	if o.MaxDepth >= 0 {
		sc.SamplingConfig.MaxDepth = o.MaxDepth
	}
}

// outputPaths names the files written for a scene
type outputPaths struct {
	PNG      string
	Radiance string
	Variance string
}

func newOutputPaths(dir, name string) outputPaths {
	return outputPaths{
		PNG:      filepath.Join(dir, name+".png"),
		Radiance: filepath.Join(dir, name+".radiance"),
		Variance: filepath.Join(dir, name+"_variance.radiance"),
	}
}

func newFilter(name string) (renderer.ReconstructionFilter, error) {
	switch name {
	case "gaussian", "":
		return renderer.NewGaussianFilter(), nil
	case "box":
		return renderer.NewBoxFilter(), nil
	}
	return nil, fmt.Errorf("unknown filter %q", name)
}

func newResolver(assetDir string) *loaders.Resolver {
	resolver := loaders.NewResolver(".")
	if assetDir != "" {
		resolver.Prepend(assetDir)
	}
	return resolver
}

func printScenes(resolver *loaders.Resolver) error {
	fmt.Println("Scenes:")
	for _, info := range scene.ListScenes() {
		fmt.Printf("  %-12s %s (default estimator %s)\n", info.ID, info.Description, info.Integrator)
	}
	fmt.Println("Estimators:")
	for _, name := range integrator.Names {
		fmt.Printf("  %s\n", name)
	}

	assets, err := scene.DiscoverAssets(resolver)
	if err != nil {
		return fmt.Errorf("while discovering assets: %w", err)
	}
	if len(assets) == 0 {
		return nil
	}
	fmt.Println("Assets:")
	for _, a := range assets {
		fmt.Printf("  %-8s %s\n", a.Kind, a.FilePath)
	}
	return nil
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if *list {
		if err := printScenes(newResolver(*assets)); err != nil {
			glog.Exitf("Error: %v", err)
		}
		return
	}

	glog.Infof("scene: %v", *sceneName)
	glog.Infof("integrator: %v", *integratorName)
	glog.Infof("assets: %v", *assets)
	glog.Infof("output: %v", *outputDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := do(ctx, overridesFromFlags()); err != nil {
		glog.Exitf("Error: %v", err)
	}
}

func do(ctx context.Context, opts overrides) error {
	logger := renderer.NewDefaultLogger()

	filter, err := newFilter(*filterName)
	if err != nil {
		return err
	}

	sc, err := scene.Build(*sceneName, scene.BuildOptions{
		Resolver: newResolver(*assets),
		EnvMap:   *envMap,
		GridPath: *gridPath,
		Camera:   opts.cameraOverride(),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("while building scene: %w", err)
	}
	opts.apply(sc)
	if err := sc.Preprocess(); err != nil {
		return fmt.Errorf("while preprocessing scene: %w", err)
	}

	integ, err := integrator.New(sc.IntegratorConfig, logger)
	if err != nil {
		return fmt.Errorf("while creating integrator: %w", err)
	}

	if err := renderer.RegisterMetricViews(); err != nil {
		return fmt.Errorf("while registering metric views: %w", err)
	}

	config := renderer.ProgressiveConfigFromScene(sc)
	config.NumWorkers = *workers
	config.Filter = filter
	pr := renderer.NewProgressiveRaytracer(sc, integ, config, logger)

	paths := newOutputPaths(*outputDir, *sceneName)
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		return fmt.Errorf("while creating output directory: %w", err)
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	passes, _, errs := pr.RenderProgressive(ctx, renderer.RenderOptions{})
	for pass := range passes {
		if interactive {
			fmt.Printf("\rround %d/%d  %.1f%%", pass.Round, pass.Stats.MaxSamples, 100*pr.Progress())
			if pass.IsLast {
				fmt.Println()
			}
		} else {
			glog.Infof("Finished round %d of %d", pass.Round, pass.Stats.MaxSamples)
		}
	}

	renderErr := <-errs
	if interactive && renderErr != nil {
		fmt.Println()
	}
	if renderErr != nil && !errors.Is(renderErr, context.Canceled) {
		return fmt.Errorf("while rendering: %w", renderErr)
	}
	if renderErr != nil {
		glog.Warningf("Render interrupted, writing the partial image")
	}

	stats := pr.Stats()
	glog.Infof("Rendered %d rounds (%d samples) in %v, average luminance %.4f",
		stats.RoundsCompleted, stats.TotalSamples, stats.Duration, renderer.CalculateAverageLuminance(pr.Image()))

	if err := writeOutputs(pr, paths, sc.SamplingConfig.ComputeVariance); err != nil {
		return err
	}
	glog.Infof("Wrote %s", paths.PNG)
	return nil
}

func writeOutputs(pr *renderer.ProgressiveRaytracer, paths outputPaths, withVariance bool) error {
	f, err := os.Create(paths.PNG)
	if err != nil {
		return fmt.Errorf("while creating %s: %w", paths.PNG, err)
	}
	if err := png.Encode(f, pr.Image()); err != nil {
		f.Close()
		return fmt.Errorf("while encoding %s: %w", paths.PNG, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("while closing %s: %w", paths.PNG, err)
	}

	if err := loaders.SaveFloatImage(paths.Radiance, pr.FloatImage()); err != nil {
		return fmt.Errorf("while writing %s: %w", paths.Radiance, err)
	}

	if !withVariance {
		return nil
	}
	varianceImage := pr.VarianceImage()
	if varianceImage == nil {
		return nil
	}
	if err := loaders.SaveFloatImage(paths.Variance, varianceImage); err != nil {
		return fmt.Errorf("while writing %s: %w", paths.Variance, err)
	}
	return nil
}
