package renderer

import (
	"fmt"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"

	"github.com/df07/go-light-transport/pkg/integrator"
)

var (
	tilesRendered   = stats.Int64("tiles_rendered", "Tiles rendered", stats.UnitDimensionless)
	samplesTaken    = stats.Int64("samples_taken", "Camera samples taken", stats.UnitDimensionless)
	roundsCompleted = stats.Int64("rounds_completed", "Rounds of one sample per pixel completed", stats.UnitDimensionless)

	integratorKey = tag.MustNewKey("integrator")
)

// MetricViews returns the views over the render and photon-map measures
func MetricViews() []*view.View {
	return []*view.View{
		{
			Name:        "go-light-transport/tiles_rendered",
			Description: "Tiles rendered",
			Measure:     tilesRendered,
			TagKeys:     []tag.Key{integratorKey},
			Aggregation: view.Count(),
		},
		{
			Name:        "go-light-transport/samples_taken",
			Description: "Camera samples taken",
			Measure:     samplesTaken,
			TagKeys:     []tag.Key{integratorKey},
			Aggregation: view.Sum(),
		},
		{
			Name:        "go-light-transport/rounds_completed",
			Description: "Rounds completed",
			Measure:     roundsCompleted,
			TagKeys:     []tag.Key{integratorKey},
			Aggregation: view.Count(),
		},
		{
			Name:        "go-light-transport/photons_stored",
			Description: "Photons deposited in photon maps",
			Measure:     integrator.PhotonsStored,
			Aggregation: view.Sum(),
		},
		{
			Name:        "go-light-transport/photons_emitted",
			Description: "Photons emitted while building photon maps",
			Measure:     integrator.PhotonsEmitted,
			Aggregation: view.Sum(),
		},
	}
}

// RegisterMetricViews registers MetricViews with the opencensus view worker
func RegisterMetricViews() error {
	if err := view.Register(MetricViews()...); err != nil {
		return fmt.Errorf("while registering metric views: %w", err)
	}
	return nil
}
