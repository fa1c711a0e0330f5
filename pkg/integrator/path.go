package integrator

import (
	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/material"
	"github.com/df07/go-light-transport/pkg/scene"
)

// PathMATS is a unidirectional path tracer that only samples the BSDF
type PathMATS struct{}

func (p *PathMATS) Li(sc *scene.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	l, _ := p.Trace(sc, sampler, ray)
	return l
}

func (p *PathMATS) Trace(sc *scene.Scene, sampler core.Sampler, ray core.Ray) (core.Vec3, PathState) {
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

// PathMIS is a unidirectional path tracer combining emitter and BSDF sampling
// at every vertex with the balance heuristic
type PathMIS struct{}

func (p *PathMIS) Li(sc *scene.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	l, _ := p.Trace(sc, sampler, ray)
	return l
}

func (p *PathMIS) Trace(sc *scene.Scene, sampler core.Sampler, ray core.Ray) (core.Vec3, PathState) {
	var l core.Vec3
	throughput := core.NewVec3(1, 1, 1)

	// The camera ray counts as a discrete event: emitters it sees get full weight
	prevDiscrete := true
	prevPdf := 0.0

	for depth := 0; ; depth++ {
		its, ok := sc.Intersect(ray)
		if !ok {
			le, pdfEm := environment(sc, ray)
			w := materialWeight(prevDiscrete, prevPdf, pdfEm)
			return l.Add(throughput.MultiplyVec(le).Multiply(w)).Sanitize(), PathEscaped
		}
		if le, pdfEm := emitted(sc, ray, its); !le.IsZero() {
			w := materialWeight(prevDiscrete, prevPdf, pdfEm)
			l = l.Add(throughput.MultiplyVec(le).Multiply(w))
		}

		if maxDepthReached(sc, depth+1) {
			return l.Sanitize(), PathMaxDepth
		}
		if throughput, ok = core.RussianRoulette(throughput, sampler.Get1D()); !ok {
			return l.Sanitize(), PathRoulette
		}

		if es, ok := sampleEmitter(sc, sampler, its.Point); ok && !sc.Occluded(es.query.ShadowRay) {
			cq := connectionQuery(ray, its, es.query.Wi)
			if f := its.BSDF.Eval(cq); !f.IsZero() {
				w := emitterWeight(es, its.BSDF.Pdf(cq))
				l = l.Add(throughput.MultiplyVec(f).MultiplyVec(es.leDivPdf).Multiply(absCos(cq.Wo) * w))
			}
		}

		q := surfaceQuery(ray, its)
		weight := its.BSDF.Sample(q, sampler.Get2D())
		if weight.IsZero() {
			return l.Sanitize(), PathRoulette
		}
		prevDiscrete = q.Measure == material.MeasureDiscrete
		prevPdf = its.BSDF.Pdf(q)
		throughput = throughput.MultiplyVec(weight)
		ray = core.NewRay(its.Point, its.ToWorld(q.Wo))
	}
}
