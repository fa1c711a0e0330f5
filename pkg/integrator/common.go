package integrator

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/geometry"
	"github.com/df07/go-light-transport/pkg/lights"
	"github.com/df07/go-light-transport/pkg/material"
	"github.com/df07/go-light-transport/pkg/scene"
)

// hitEmitterQuery describes the emitter point that ray reached at its
func hitEmitterQuery(ray core.Ray, its *geometry.Intersection) *lights.EmitterQuery {
	q := lights.NewEmitterHitQuery(ray.Origin, its.Point, its.GeoFrame.N)
	q.UV = its.UV
	return q
}

// escapeQuery describes the environment seen along an escaping ray
func escapeQuery(ray core.Ray) *lights.EmitterQuery {
	q := lights.NewEmitterQuery(ray.Origin)
	q.Wi = ray.Direction
	return q
}

// surfaceQuery creates a sampling query at its for a path arriving along ray
func surfaceQuery(ray core.Ray, its *geometry.Intersection) *material.BSDFQuery {
	return material.NewBSDFQuery(its.ToLocal(ray.Direction.Negate()), its.UV, its.Point)
}

// connectionQuery creates an evaluation query toward a world direction
func connectionQuery(ray core.Ray, its *geometry.Intersection, wo core.Vec3) *material.BSDFQuery {
	return material.NewBSDFEvalQuery(its.ToLocal(ray.Direction.Negate()), its.ToLocal(wo), its.UV, its.Point)
}

// emitterSample is one light sample taken from a shading point
type emitterSample struct {
	emitter  lights.Emitter
	query    *lights.EmitterQuery
	leDivPdf core.Vec3 // Le/pdf, already scaled by the emitter selection count
	pdf      float64   // Solid-angle density including emitter selection
}

// sampleEmitter picks one emitter uniformly and samples it from ref. ok is false
// when the scene has no emitters or the sample carries nothing.
func sampleEmitter(sc *scene.Scene, sampler core.Sampler, ref core.Vec3) (emitterSample, bool) {
	n := sc.EmitterCount()
	e := sc.RandomEmitter(sampler.Get1D())
	if e == nil {
		return emitterSample{}, false
	}
	return sampleOne(e, n, sampler, ref)
}

func sampleOne(e lights.Emitter, n int, sampler core.Sampler, ref core.Vec3) (emitterSample, bool) {
	q := lights.NewEmitterQuery(ref)
	le := e.Sample(q, sampler.Get2D())
	if le.IsZero() {
		return emitterSample{}, false
	}
	return emitterSample{
		emitter:  e,
		query:    q,
		leDivPdf: le.Multiply(float64(n)),
		pdf:      q.Pdf / float64(n),
	}, true
}

// emitterWeight is the balance-heuristic weight of an emitter sample against
// the continuous density other; delta emitters cannot be reached any other way
func emitterWeight(s emitterSample, other float64) float64 {
	if lights.IsDelta(s.emitter) {
		return 1
	}
	return core.BalanceHeuristic(s.pdf, other)
}

// absCos is the cosine factor of a local direction
func absCos(v core.Vec3) float64 {
	return math.Abs(core.CosTheta(v))
}

// emitted returns the radiance of the emitter hit at its toward ray.Origin and
// the solid-angle density emitter sampling would have used for it
func emitted(sc *scene.Scene, ray core.Ray, its *geometry.Intersection) (core.Vec3, float64) {
	if its.Emitter == nil {
		return core.Vec3{}, 0
	}
	q := hitEmitterQuery(ray, its)
	return its.Emitter.Eval(q), its.Emitter.Pdf(q) / float64(max(1, sc.EmitterCount()))
}

// environment returns the radiance of the environment along an escaping ray and
// the solid-angle density emitter sampling would have used for it
func environment(sc *scene.Scene, ray core.Ray) (core.Vec3, float64) {
	env := sc.Environment()
	if env == nil {
		return core.Vec3{}, 0
	}
	q := escapeQuery(ray)
	return env.Eval(q), env.Pdf(q) / float64(max(1, sc.EmitterCount()))
}

// materialWeight is the balance-heuristic weight of a BSDF-sampled hit;
// discrete events and camera rays always get full weight
func materialWeight(discrete bool, pdfMat, pdfEm float64) float64 {
	if discrete {
		return 1
	}
	return core.BalanceHeuristic(pdfMat, pdfEm)
}

// maxDepthReached reports whether a path with depth vertices may not extend
func maxDepthReached(sc *scene.Scene, depth int) bool {
	return sc.SamplingConfig.MaxDepth > 0 && depth >= sc.SamplingConfig.MaxDepth
}
