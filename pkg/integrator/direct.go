package integrator

import (
	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/material"
	"github.com/df07/go-light-transport/pkg/scene"
)

// Direct samples every emitter once at the first hit, without MIS
type Direct struct{}

func (d *Direct) Li(sc *scene.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	its, ok := sc.Intersect(ray)
	if !ok {
		le, _ := environment(sc, ray)
		return le.Sanitize()
	}

	l, _ := emitted(sc, ray, its)
	for _, e := range sc.Lights() {
		es, ok := sampleOne(e, 1, sampler, its.Point)
		if !ok || sc.Occluded(es.query.ShadowRay) {
			continue
		}
		cq := connectionQuery(ray, its, es.query.Wi)
		f := its.BSDF.Eval(cq)
		l = l.Add(f.MultiplyVec(es.leDivPdf).Multiply(absCos(cq.Wo)))
	}
	return l.Sanitize()
}

// DirectEMS estimates direct lighting with one emitter sample per hit
type DirectEMS struct{}

func (d *DirectEMS) Li(sc *scene.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	its, ok := sc.Intersect(ray)
	if !ok {
		le, _ := environment(sc, ray)
		return le.Sanitize()
	}

	l, _ := emitted(sc, ray, its)
	es, ok := sampleEmitter(sc, sampler, its.Point)
	if !ok || sc.Occluded(es.query.ShadowRay) {
		return l.Sanitize()
	}
	cq := connectionQuery(ray, its, es.query.Wi)
	f := its.BSDF.Eval(cq)
	return l.Add(f.MultiplyVec(es.leDivPdf).Multiply(absCos(cq.Wo))).Sanitize()
}

// DirectMATS estimates direct lighting with one BSDF sample per hit
type DirectMATS struct{}

func (d *DirectMATS) Li(sc *scene.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	its, ok := sc.Intersect(ray)
	if !ok {
		le, _ := environment(sc, ray)
		return le.Sanitize()
	}

	l, _ := emitted(sc, ray, its)
	q := surfaceQuery(ray, its)
	weight := its.BSDF.Sample(q, sampler.Get2D())
	if weight.IsZero() {
		return l.Sanitize()
	}

	next := core.NewRay(its.Point, its.ToWorld(q.Wo))
	hit, ok := sc.Intersect(next)
	var le core.Vec3
	if ok {
		le, _ = emitted(sc, next, hit)
	} else {
		le, _ = environment(sc, next)
	}
	return l.Add(weight.MultiplyVec(le)).Sanitize()
}

// DirectMIS combines one sample per emitter with one BSDF sample using the
// balance heuristic
type DirectMIS struct{}

func (d *DirectMIS) Li(sc *scene.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	its, ok := sc.Intersect(ray)
	if !ok {
		le, _ := environment(sc, ray)
		return le.Sanitize()
	}
	l, _ := emitted(sc, ray, its)

	// Every emitter is sampled, so densities carry no selection probability here
	for _, e := range sc.Lights() {
		es, ok := sampleOne(e, 1, sampler, its.Point)
		if !ok || sc.Occluded(es.query.ShadowRay) {
			continue
		}
		cq := connectionQuery(ray, its, es.query.Wi)
		f := its.BSDF.Eval(cq)
		if f.IsZero() {
			continue
		}
		w := emitterWeight(es, its.BSDF.Pdf(cq))
		l = l.Add(f.MultiplyVec(es.leDivPdf).Multiply(absCos(cq.Wo) * w))
	}

	q := surfaceQuery(ray, its)
	weight := its.BSDF.Sample(q, sampler.Get2D())
	if weight.IsZero() {
		return l.Sanitize()
	}
	discrete := q.Measure == material.MeasureDiscrete
	pdfMat := its.BSDF.Pdf(q)

	next := core.NewRay(its.Point, its.ToWorld(q.Wo))
	hit, ok := sc.Intersect(next)
	var le core.Vec3
	var pdfEm float64
	if ok {
		if hit.Emitter != nil {
			hq := hitEmitterQuery(next, hit)
			le, pdfEm = hit.Emitter.Eval(hq), hit.Emitter.Pdf(hq)
		}
	} else if env := sc.Environment(); env != nil {
		eq := escapeQuery(next)
		le, pdfEm = env.Eval(eq), env.Pdf(eq)
	}
	if le.IsZero() {
		return l.Sanitize()
	}
	w := materialWeight(discrete, pdfMat, pdfEm)
	return l.Add(weight.MultiplyVec(le).Multiply(w)).Sanitize()
}
