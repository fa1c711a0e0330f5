package material

import (
	"github.com/df07/go-light-transport/pkg/core"
)

// TwoSided makes an opaque BSDF respond identically on both sides of a surface
// by mirroring the query into the upper hemisphere.
type TwoSided struct {
	BSDF BSDF
}

// NewTwoSided wraps an opaque BSDF. Not meant for dielectrics, which need to know the side.
func NewTwoSided(bsdf BSDF) *TwoSided {
	return &TwoSided{BSDF: bsdf}
}

func flipZ(v core.Vec3) core.Vec3 {
	return core.NewVec3(v.X, v.Y, -v.Z)
}

func (t *TwoSided) Sample(q *BSDFQuery, sample core.Vec2) core.Vec3 {
	if core.CosTheta(q.Wi) >= 0 {
		return t.BSDF.Sample(q, sample)
	}
	q.Wi = flipZ(q.Wi)
	weight := t.BSDF.Sample(q, sample)
	q.Wi = flipZ(q.Wi)
	q.Wo = flipZ(q.Wo)
	return weight
}

func (t *TwoSided) Eval(q *BSDFQuery) core.Vec3 {
	if core.CosTheta(q.Wi) >= 0 {
		return t.BSDF.Eval(q)
	}
	flipped := *q
	flipped.Wi, flipped.Wo = flipZ(q.Wi), flipZ(q.Wo)
	return t.BSDF.Eval(&flipped)
}

func (t *TwoSided) Pdf(q *BSDFQuery) float64 {
	if core.CosTheta(q.Wi) >= 0 {
		return t.BSDF.Pdf(q)
	}
	flipped := *q
	flipped.Wi, flipped.Wo = flipZ(q.Wi), flipZ(q.Wo)
	return t.BSDF.Pdf(&flipped)
}

func (t *TwoSided) IsDiffuse() bool { return t.BSDF.IsDiffuse() }
