package renderer

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/integrator"
	"github.com/df07/go-light-transport/pkg/loaders"
	"github.com/df07/go-light-transport/pkg/scene"
)

var tracer = otel.Tracer("go-light-transport/renderer")

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	TileSize        int                  // Size of each tile (32x32 recommended)
	SamplesPerPixel int                  // Rounds to render, one sample per pixel each
	PreviewInterval int                  // Rounds between pass results, 0 = only the last
	NumWorkers      int                  // Number of parallel workers (0 = use CPU count)
	ComputeVariance bool                 // Track per-pixel variance of the mean
	Seed            int64                // Base seed of the tile samplers
	Filter          ReconstructionFilter // nil selects the Gaussian filter
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:        32,
		SamplesPerPixel: 64,
		PreviewInterval: 8,
		NumWorkers:      0, // Auto-detect CPU count
		ComputeVariance: true,
		Filter:          NewGaussianFilter(),
	}
}

// ProgressiveConfigFromScene applies the scene's sampling settings to the defaults
func ProgressiveConfigFromScene(sc *scene.Scene) ProgressiveConfig {
	config := DefaultProgressiveConfig()
	sampling := sc.SamplingConfig
	if sampling.TileSize > 0 {
		config.TileSize = sampling.TileSize
	}
	if sampling.SamplesPerPixel > 0 {
		config.SamplesPerPixel = sampling.SamplesPerPixel
	}
	config.ComputeVariance = sampling.ComputeVariance
	config.Seed = sampling.Seed
	return config
}

// ProgressiveRaytracer renders an image in rounds of one sample per pixel. Each
// round every tile is rendered by the worker pool and merged by the goroutine
// driving the render, so the image blocks and variance sums need no locking.
type ProgressiveRaytracer struct {
	scene         *scene.Scene
	integrator    integrator.Integrator
	width, height int
	config        ProgressiveConfig
	tiles         []*Tile
	samplers      *samplerTable
	tileRenderer  *TileRenderer
	image         *ImageBlock  // Every sample so far
	round         *ImageBlock  // Samples of the current round, for variance
	pixelStats    []PixelStats // Per-pixel round statistics, row-major
	logger        core.Logger

	completed    atomic.Int64
	aborted      atomic.Bool
	preprocessed bool
	duration     time.Duration
}

// NewProgressiveRaytracer creates a new progressive raytracer. The scene must
// already be preprocessed.
func NewProgressiveRaytracer(sc *scene.Scene, integ integrator.Integrator, config ProgressiveConfig, logger core.Logger) *ProgressiveRaytracer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	if config.Filter == nil {
		config.Filter = NewGaussianFilter()
	}
	if config.TileSize <= 0 {
		config.TileSize = DefaultProgressiveConfig().TileSize
	}

	width, height := sc.SamplingConfig.Width, sc.SamplingConfig.Height
	if width == 0 || height == 0 {
		width, height = sc.Camera.Size()
	}
	bounds := image.Rect(0, 0, width, height)

	pr := &ProgressiveRaytracer{
		scene:        sc,
		integrator:   integ,
		width:        width,
		height:       height,
		config:       config,
		tiles:        NewTileGrid(width, height, config.TileSize, config.Filter),
		samplers:     newSamplerTable(core.NewSeededSampler(config.Seed), config.Seed),
		tileRenderer: NewTileRenderer(sc, integ),
		image:        NewImageBlock(bounds, config.Filter),
		logger:       logger,
	}
	if config.ComputeVariance {
		pr.round = NewImageBlock(bounds, config.Filter)
		pr.pixelStats = make([]PixelStats, width*height)
	}
	return pr
}

// Preprocess runs the integrator's scene pass, once
func (pr *ProgressiveRaytracer) Preprocess(ctx context.Context) error {
	if pr.preprocessed {
		return nil
	}
	if p, ok := pr.integrator.(integrator.Preprocessor); ok {
		start := time.Now()
		if err := p.Preprocess(ctx, pr.scene); err != nil {
			return fmt.Errorf("while preprocessing integrator: %w", err)
		}
		pr.logger.Printf("Integrator preprocessing took %v\n", time.Since(start))
	}
	pr.preprocessed = true
	return nil
}

// Stop asks the render to end after the round in progress
func (pr *ProgressiveRaytracer) Stop() {
	pr.aborted.Store(true)
}

// Progress returns the fraction of rounds completed
func (pr *ProgressiveRaytracer) Progress() float64 {
	if pr.config.SamplesPerPixel <= 0 {
		return 1
	}
	return float64(pr.completed.Load()) / float64(pr.config.SamplesPerPixel)
}

// Tiles returns the tile grid
func (pr *ProgressiveRaytracer) Tiles() []*Tile { return pr.tiles }

// Render runs every round and returns when the image is complete, Stop was
// called or ctx was cancelled. An aborted render is not an error.
func (pr *ProgressiveRaytracer) Render(ctx context.Context) (RenderStats, error) {
	return pr.render(ctx, nil, nil)
}

// renderTask is the worker side of a round
func (pr *ProgressiveRaytracer) renderTask(ctx context.Context, task TileTask) TileResult {
	sampler := pr.samplers.get(task.Tile.ID)
	samples := pr.tileRenderer.RenderTile(task.Tile, sampler)
	return TileResult{TaskID: task.TaskID, Tile: task.Tile, Samples: samples}
}

func (pr *ProgressiveRaytracer) render(ctx context.Context, tileCallback func(TileCompletionResult), passCallback func(PassResult) bool) (renderStats RenderStats, err error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ProgressiveRaytracer.Render")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()
	span.SetAttributes(
		attribute.Int("width", pr.width),
		attribute.Int("height", pr.height),
		attribute.Int("samples_per_pixel", pr.config.SamplesPerPixel),
		attribute.String("integrator", pr.scene.IntegratorConfig.Type),
	)

	if ctx, err = tag.New(ctx, tag.Upsert(integratorKey, pr.scene.IntegratorConfig.Type)); err != nil {
		return RenderStats{}, fmt.Errorf("while tagging metrics: %w", err)
	}
	if err := pr.Preprocess(ctx); err != nil {
		return RenderStats{}, err
	}

	pool := NewWorkerPool(pr.config.NumWorkers, len(pr.tiles), pr.renderTask)
	pool.Start(ctx)
	defer pool.Stop()

	pr.logger.Printf("Rendering %dx%d with %d samples per pixel on %d workers (%d tiles)\n",
		pr.width, pr.height, pr.config.SamplesPerPixel, pool.NumWorkers(), len(pr.tiles))

	total := pr.config.SamplesPerPixel
	for k := int(pr.completed.Load()); k < total; k++ {
		if ctx.Err() != nil {
			pr.aborted.Store(true)
		}
		if pr.aborted.Load() {
			pr.logger.Printf("Rendering aborted after %d of %d rounds\n", k, total)
			break
		}

		start := time.Now()
		if err := pr.renderRound(ctx, pool, k, tileCallback); err != nil {
			return pr.Stats(), err
		}
		pr.duration += time.Since(start)

		isLast := k == total-1
		interval := pr.config.PreviewInterval
		if passCallback != nil && (isLast || (interval > 0 && (k+1)%interval == 0)) {
			result := PassResult{Round: k + 1, Image: pr.Image(), Stats: pr.Stats(), IsLast: isLast}
			if !passCallback(result) {
				pr.aborted.Store(true)
			}
		}
	}

	renderStats = pr.Stats()
	span.SetAttributes(attribute.Int64("rounds_completed", int64(renderStats.RoundsCompleted)), attribute.Bool("aborted", renderStats.Aborted))
	pr.logger.Printf("Rendered %d rounds in %v\n", renderStats.RoundsCompleted, renderStats.Duration)
	return renderStats, nil
}

// renderRound renders one sample per pixel across all tiles and folds the
// results into the image
func (pr *ProgressiveRaytracer) renderRound(ctx context.Context, pool *WorkerPool, round int, tileCallback func(TileCompletionResult)) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ProgressiveRaytracer.Round")
	defer span.End()
	span.SetAttributes(attribute.Int("round", round))

	if pr.round != nil {
		pr.round.Clear()
	}
	for i, tile := range pr.tiles {
		pool.SubmitTask(TileTask{Tile: tile, Round: round, TaskID: i})
	}

	// Drain every result even after a failure so no task outlives the round
	var firstErr error
	for i := 0; i < len(pr.tiles); i++ {
		result, ok := pool.GetResult()
		if !ok {
			return fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}

		tile := result.Tile
		pr.image.Merge(tile.Block)
		if pr.round != nil {
			pr.round.Merge(tile.Block)
		}
		tile.Rounds++
		stats.Record(ctx, tilesRendered.M(1), samplesTaken.M(int64(result.Samples)))

		if tileCallback != nil {
			tileCallback(TileCompletionResult{
				TileX:       tile.Bounds.Min.X / pr.config.TileSize,
				TileY:       tile.Bounds.Min.Y / pr.config.TileSize,
				TileImage:   pr.image.RegionImage(tile.Bounds),
				Round:       round + 1,
				TileNumber:  i + 1,
				TotalTiles:  len(pr.tiles),
				TotalRounds: pr.config.SamplesPerPixel,
			})
		}
	}
	if firstErr != nil {
		span.RecordError(firstErr)
		span.SetStatus(codes.Error, firstErr.Error())
		return fmt.Errorf("while rendering round %d: %w", round+1, firstErr)
	}

	if pr.round != nil {
		for y := 0; y < pr.height; y++ {
			for x := 0; x < pr.width; x++ {
				pr.pixelStats[y*pr.width+x].AddSample(pr.round.At(x, y))
			}
		}
	}
	pr.completed.Add(1)
	stats.Record(ctx, roundsCompleted.M(1))
	return nil
}

// Stats summarizes the rounds rendered so far
func (pr *ProgressiveRaytracer) Stats() RenderStats {
	rounds := int(pr.completed.Load())
	pixels := pr.width * pr.height
	return RenderStats{
		TotalPixels:     pixels,
		TotalSamples:    rounds * pixels,
		AverageSamples:  float64(rounds),
		MaxSamples:      pr.config.SamplesPerPixel,
		RoundsCompleted: rounds,
		Aborted:         rounds < pr.config.SamplesPerPixel && pr.aborted.Load(),
		Duration:        pr.duration,
	}
}

// Image returns the tonemapped image so far
func (pr *ProgressiveRaytracer) Image() *image.RGBA {
	return pr.image.ToImage()
}

// FloatImage returns the linear radiance image so far
func (pr *ProgressiveRaytracer) FloatImage() *loaders.FloatImage {
	return pr.image.ToFloatImage()
}

// VarianceImage returns the per-pixel variance of the mean, or nil when
// variance tracking is off
func (pr *ProgressiveRaytracer) VarianceImage() *loaders.FloatImage {
	if pr.pixelStats == nil {
		return nil
	}
	img := loaders.NewFloatImage(pr.width, pr.height)
	for i := range pr.pixelStats {
		img.Pixels[i] = pr.pixelStats[i].Variance()
	}
	return img
}

// PassResult contains the image after a number of rounds
type PassResult struct {
	Round  int
	Image  *image.RGBA
	Stats  RenderStats
	IsLast bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX     int // Tile coordinates (not pixel coordinates)
	TileY     int
	TileImage *image.RGBA // Image data for just this tile
	Round     int         // Which round this tile was rendered in (1-based)

	// Progress information
	TileNumber  int // Current tile number in this round (1-based)
	TotalTiles  int // Total number of tiles in the image
	TotalRounds int // Total number of rounds planned
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive renders with channel-based communication.
// Returns channels for events. The caller should read from these channels in separate goroutines.
// If options.TileUpdates is false, the tile channel will be closed immediately and no tile events will be generated.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100) // Buffer for tiles
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)

		var tileCallback func(TileCompletionResult)
		if options.TileUpdates {
			tileCallback = func(result TileCompletionResult) {
				select {
				case tileChan <- result:
				case <-ctx.Done():
				default:
					// Channel full, the consumer only misses a preview
				}
			}
		}
		passCallback := func(result PassResult) bool {
			select {
			case passChan <- result:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if _, err := pr.render(ctx, tileCallback, passCallback); err != nil {
			errChan <- err
			return
		}
		if err := ctx.Err(); err != nil {
			errChan <- err
		}
	}()

	return passChan, tileChan, errChan
}
