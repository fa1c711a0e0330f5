package integrator

import (
	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/material"
	"github.com/df07/go-light-transport/pkg/medium"
	"github.com/df07/go-light-transport/pkg/scene"
)

// VolPath is a path tracer for scenes with participating media. Free paths are
// drawn with spectral tracking in one medium the ray segment overlaps;
// connections are attenuated with ratio-tracked transmittance.
type VolPath struct{}

func (v *VolPath) Li(sc *scene.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	l, _ := v.Trace(sc, sampler, ray)
	return l
}

func (v *VolPath) Trace(sc *scene.Scene, sampler core.Sampler, ray core.Ray) (core.Vec3, PathState) {
	var l core.Vec3
	throughput := core.NewVec3(1, 1, 1)
	prevDiscrete := true
	prevPdf := 0.0

	for depth := 0; ; depth++ {
		its, hit := sc.Intersect(ray)
		tSurface := ray.TMax
		if hit {
			tSurface = its.T
		}

		// Free paths are sampled in one medium picked among those the segment
		// up to the surface crosses; the others contribute their transmittance
		segment := core.NewRaySegment(ray.Origin, ray.Direction, ray.TMin, tSurface)
		if m, pdf := sc.RandomMedium(segment, sampler.Get1D()); m != nil {
			mq := medium.NewQuery(tSurface)
			weight := m.Sample(ray, sampler, mq)
			if mq.HasInteraction {
				toPoint := core.NewRaySegment(ray.Origin, ray.Direction, ray.TMin, mq.T)
				tr := transmittance(sc, sampler, toPoint, m)
				throughput = throughput.MultiplyVec(weight).MultiplyVec(tr).Multiply(1 / pdf)
				if maxDepthReached(sc, depth+1) {
					return l.Sanitize(), PathMaxDepth
				}
				var ok bool
				if throughput, ok = core.RussianRoulette(throughput, sampler.Get1D()); !ok {
					return l.Sanitize(), PathRoulette
				}

				phase := m.PhaseFunction()
				wi := ray.Direction.Negate()
				if es, ok := sampleEmitter(sc, sampler, mq.Point); ok && !sc.Occluded(es.query.ShadowRay) {
					pq := &medium.PhaseQuery{Wi: wi, Wo: es.query.Wi}
					if f := phase.Eval(pq); f > 0 {
						tr := transmittance(sc, sampler, es.query.ShadowRay, nil)
						w := emitterWeight(es, phase.Pdf(pq))
						l = l.Add(throughput.MultiplyVec(tr).MultiplyVec(es.leDivPdf).Multiply(f * w))
					}
				}

				pq := &medium.PhaseQuery{Wi: wi}
				throughput = throughput.Multiply(phase.Sample(pq, sampler.Get2D()))
				prevDiscrete = false
				prevPdf = phase.Pdf(pq)
				ray = core.NewRay(mq.Point, pq.Wo)
				continue
			}
			tr := transmittance(sc, sampler, segment, m)
			throughput = throughput.MultiplyVec(weight).MultiplyVec(tr)
		}

		if !hit {
			le, pdfEm := environment(sc, ray)
			if !le.IsZero() {
				w := materialWeight(prevDiscrete, prevPdf, pdfEm)
				l = l.Add(throughput.MultiplyVec(le).Multiply(w))
			}
			return l.Sanitize(), PathEscaped
		}
		if le, pdfEm := emitted(sc, ray, its); !le.IsZero() {
			w := materialWeight(prevDiscrete, prevPdf, pdfEm)
			l = l.Add(throughput.MultiplyVec(le).Multiply(w))
		}

		if maxDepthReached(sc, depth+1) {
			return l.Sanitize(), PathMaxDepth
		}
		var ok bool
		if throughput, ok = core.RussianRoulette(throughput, sampler.Get1D()); !ok {
			return l.Sanitize(), PathRoulette
		}

		if es, ok := sampleEmitter(sc, sampler, its.Point); ok && !sc.Occluded(es.query.ShadowRay) {
			cq := connectionQuery(ray, its, es.query.Wi)
			if f := its.BSDF.Eval(cq); !f.IsZero() {
				tr := transmittance(sc, sampler, es.query.ShadowRay, nil)
				w := emitterWeight(es, its.BSDF.Pdf(cq))
				l = l.Add(throughput.MultiplyVec(f).MultiplyVec(tr).MultiplyVec(es.leDivPdf).Multiply(absCos(cq.Wo) * w))
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

// transmittance multiplies the ratio-tracked transmittance of every medium along
// the ray's interval except skip
func transmittance(sc *scene.Scene, sampler core.Sampler, ray core.Ray, skip *medium.Medium) core.Vec3 {
	tr := core.NewVec3(1, 1, 1)
	for _, m := range sc.Media() {
		if m == skip {
			continue
		}
		tr = tr.MultiplyVec(m.Tr(ray, sampler, medium.NewQuery(ray.TMax)))
		if tr.IsZero() {
			break
		}
	}
	return tr
}
