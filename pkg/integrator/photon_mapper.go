package integrator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.opencensus.io/stats"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/geometry"
	"github.com/df07/go-light-transport/pkg/material"
	"github.com/df07/go-light-transport/pkg/photon"
	"github.com/df07/go-light-transport/pkg/scene"
)

var tracer = otel.Tracer("go-light-transport/integrator")

// ErrNoEmitters is returned when photons are requested from a scene without lights
var ErrNoEmitters = errors.New("scene has no emitters")

var (
	PhotonsStored  = stats.Int64("photons_stored", "Photons deposited in the photon map", stats.UnitDimensionless)
	PhotonsEmitted = stats.Int64("photons_emitted", "Photons emitted while building the photon map", stats.UnitDimensionless)
)

// cancellation is polled once per this many emitted photons
const cancelCheckInterval = 4096

// PhotonMapper is a two-pass estimator: Preprocess traces photons from the
// emitters into a kd-tree, then camera paths follow specular bounces and
// reconstruct radiance from the photons around the first diffuse hit.
type PhotonMapper struct {
	PhotonCount       int
	Radius            float64 // Zero selects a radius from the scene extent
	MaxEmissionFactor int

	logger  core.Logger
	photons *photon.Map
	emitted int
	radius  float64
}

// NewPhotonMapper creates an estimator from the integrator configuration
func NewPhotonMapper(cfg scene.IntegratorConfig, logger core.Logger) *PhotonMapper {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &PhotonMapper{
		PhotonCount:       cfg.PhotonCount,
		Radius:            cfg.PhotonRadius,
		MaxEmissionFactor: max(1, cfg.MaxEmissionFactor),
		logger:            logger,
		photons:           photon.NewMap(),
	}
}

// Photons returns the photon map built by Preprocess
func (pm *PhotonMapper) Photons() *photon.Map { return pm.photons }

// EmittedCount returns the number of photons emitted to fill the map
func (pm *PhotonMapper) EmittedCount() int { return pm.emitted }

// SearchRadius returns the density estimation radius in use
func (pm *PhotonMapper) SearchRadius() float64 { return pm.radius }

// Preprocess fills and builds the photon map. It must finish before Li is called.
func (pm *PhotonMapper) Preprocess(ctx context.Context, sc *scene.Scene) (err error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "PhotonMapper.Preprocess")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	n := sc.EmitterCount()
	if n == 0 {
		return fmt.Errorf("while emitting photons: %w", ErrNoEmitters)
	}
	if pm.PhotonCount <= 0 {
		return fmt.Errorf("while emitting photons: photon count %d must be positive", pm.PhotonCount)
	}

	pm.radius = pm.Radius
	if pm.radius <= 0 {
		pm.radius = sc.BoundingBox().Size().Length() / 500
	}

	pm.photons = photon.NewMap()
	pm.photons.Reserve(pm.PhotonCount)
	pm.emitted = 0

	sampler := core.NewSeededSampler(sc.SamplingConfig.Seed)
	maxEmitted := pm.PhotonCount * pm.MaxEmissionFactor

	for pm.photons.Len() < pm.PhotonCount {
		if pm.emitted >= maxEmitted {
			pm.logger.Printf("Warning: stopped after %d emitted photons with only %d stored\n", pm.emitted, pm.photons.Len())
			break
		}
		if pm.emitted%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("while emitting photons: %w", err)
			}
		}
		pm.emitted++

		e := sc.RandomEmitter(sampler.Get1D())
		ray, power := e.SamplePhoton(sampler.Get2D(), sampler.Get2D())
		if err := pm.tracePhoton(sc, sampler, ray, power.Multiply(float64(n))); err != nil {
			return err
		}
	}

	if err := pm.photons.Build(); err != nil {
		return fmt.Errorf("while building photon map: %w", err)
	}

	stats.Record(ctx, PhotonsStored.M(int64(pm.photons.Len())), PhotonsEmitted.M(int64(pm.emitted)))
	span.SetAttributes(
		attribute.Int64("photons.stored", int64(pm.photons.Len())),
		attribute.Int64("photons.emitted", int64(pm.emitted)),
		attribute.Float64("photons.radius", pm.radius),
	)
	pm.logger.Printf("Photon map: %d photons from %d emitted, radius %.4g\n", pm.photons.Len(), pm.emitted, pm.radius)
	return nil
}

// tracePhoton follows one photon through the scene, depositing it at every
// diffuse surface it reaches. The path stops as soon as the map holds
// PhotonCount photons; it still counts as emitted, so at most the rest of one
// path is missing from the estimate.
func (pm *PhotonMapper) tracePhoton(sc *scene.Scene, sampler core.Sampler, ray core.Ray, power core.Vec3) error {
	for depth := 0; !power.IsZero(); depth++ {
		its, ok := sc.Intersect(ray)
		if !ok {
			return nil
		}
		if its.BSDF.IsDiffuse() {
			p := photon.Photon{Position: its.Point, Direction: ray.Direction.Negate(), Power: power}
			if err := pm.photons.PushBack(p); err != nil {
				return fmt.Errorf("while storing photon: %w", err)
			}
			if pm.photons.Len() >= pm.PhotonCount {
				return nil
			}
		}
		if maxDepthReached(sc, depth+1) {
			return nil
		}
		if power, ok = core.RussianRoulette(power, sampler.Get1D()); !ok {
			return nil
		}

		q := surfaceQuery(ray, its)
		weight := its.BSDF.Sample(q, sampler.Get2D())
		power = power.MultiplyVec(weight)
		ray = core.NewRay(its.Point, its.ToWorld(q.Wo))
	}
	return nil
}

func (pm *PhotonMapper) Li(sc *scene.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	l, _ := pm.Trace(sc, sampler, ray)
	return l
}

func (pm *PhotonMapper) Trace(sc *scene.Scene, sampler core.Sampler, ray core.Ray) (core.Vec3, PathState) {
	var l core.Vec3
	throughput := core.NewVec3(1, 1, 1)

	for depth := 0; ; depth++ {
		its, ok := sc.Intersect(ray)
		if !ok {
			le, _ := environment(sc, ray)
			return l.Add(throughput.MultiplyVec(le)).Sanitize(), PathEscaped
		}
		le, _ := emitted(sc, ray, its)
		l = l.Add(throughput.MultiplyVec(le))

		if its.BSDF.IsDiffuse() {
			l = l.Add(throughput.MultiplyVec(pm.estimate(ray, its)))
			return l.Sanitize(), PathPhotonEstimate
		}

		if maxDepthReached(sc, depth+1) {
			return l.Sanitize(), PathMaxDepth
		}
		if throughput, ok = core.RussianRoulette(throughput, sampler.Get1D()); !ok {
			return l.Sanitize(), PathRoulette
		}
		q := surfaceQuery(ray, its)
		weight := its.BSDF.Sample(q, sampler.Get2D())
		if weight.IsZero() {
			return l.Sanitize(), PathRoulette
		}
		throughput = throughput.MultiplyVec(weight)
		ray = core.NewRay(its.Point, its.ToWorld(q.Wo))
	}
}

// estimate reconstructs the reflected radiance at its from the photons within
// the search radius
func (pm *PhotonMapper) estimate(ray core.Ray, its *geometry.Intersection) core.Vec3 {
	var buf [64]int
	found := pm.photons.Search(its.Point, pm.radius, buf[:0])

	wi := its.ToLocal(ray.Direction.Negate())
	var sum core.Vec3
	for _, i := range found {
		p := pm.photons.At(i)
		q := material.NewBSDFEvalQuery(wi, its.ToLocal(p.Direction), its.UV, its.Point)
		sum = sum.Add(its.BSDF.Eval(q).MultiplyVec(p.Power))
	}
	return sum.Multiply(1 / (math.Pi * float64(pm.emitted) * pm.radius * pm.radius))
}
