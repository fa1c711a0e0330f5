// Package integrator implements the radiance estimators.
package integrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/scene"
)

// ErrUnknownIntegrator is returned by New for unregistered estimator names
var ErrUnknownIntegrator = errors.New("unknown integrator")

// Integrator estimates the radiance arriving along a camera ray.
// Implementations are shared read-only between render workers.
type Integrator interface {
	Li(sc *scene.Scene, sampler core.Sampler, ray core.Ray) core.Vec3
}

// Preprocessor is implemented by integrators that need a pass over the scene
// before rendering starts
type Preprocessor interface {
	Preprocess(ctx context.Context, sc *scene.Scene) error
}

// PathState records why a path stopped
type PathState int

const (
	PathTracing PathState = iota
	PathEscaped
	PathRoulette
	PathPhotonEstimate
	PathMaxDepth
)

func (s PathState) String() string {
	switch s {
	case PathTracing:
		return "tracing"
	case PathEscaped:
		return "escaped"
	case PathRoulette:
		return "roulette"
	case PathPhotonEstimate:
		return "photon-estimate"
	case PathMaxDepth:
		return "max-depth"
	}
	return fmt.Sprintf("PathState(%d)", int(s))
}

// PathTracer is implemented by the path-extending estimators
type PathTracer interface {
	Integrator
	// Trace is Li plus the reason the path terminated
	Trace(sc *scene.Scene, sampler core.Sampler, ray core.Ray) (core.Vec3, PathState)
}

// Names lists the registered estimators
var Names = []string{
	"direct", "direct_ems", "direct_mats", "direct_mis",
	"path_mats", "path_mis", "vol_path", "photon_mapper", "av",
}

// New creates the estimator named by cfg.Type
func New(cfg scene.IntegratorConfig, logger core.Logger) (Integrator, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	switch cfg.Type {
	case "direct":
		return &Direct{}, nil
	case "direct_ems":
		return &DirectEMS{}, nil
	case "direct_mats":
		return &DirectMATS{}, nil
	case "direct_mis":
		return &DirectMIS{}, nil
	case "path_mats":
		return &PathMATS{}, nil
	case "path_mis":
		return &PathMIS{}, nil
	case "vol_path":
		return &VolPath{}, nil
	case "photon_mapper":
		return NewPhotonMapper(cfg, logger), nil
	case "av":
		return &AverageVisibility{Length: cfg.AVLength}, nil
	}
	return nil, fmt.Errorf("integrator %q: %w", cfg.Type, ErrUnknownIntegrator)
}
