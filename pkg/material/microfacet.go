package material

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/warp"
)

// Microfacet is a rough dielectric coating (Beckmann distribution) over a diffuse base.
// The specular weight is ks = 1 - max(kd), which keeps the sum energy conserving.
type Microfacet struct {
	Alpha  float64
	IntIOR float64
	ExtIOR float64
	Kd     core.Vec3
	ks     float64
}

// NewMicrofacet creates a rough plastic-like material
func NewMicrofacet(alpha float64, kd core.Vec3, intIOR float64) *Microfacet {
	return &Microfacet{
		Alpha:  alpha,
		IntIOR: intIOR,
		ExtIOR: 1.000277,
		Kd:     kd,
		ks:     1 - kd.MaxComponent(),
	}
}

// smithBeckmannG1 is the rational approximation of the Smith shadowing term
func (m *Microfacet) smithBeckmannG1(v, wh core.Vec3) float64 {
	cosTheta := core.CosTheta(v)
	if v.Dot(wh)/cosTheta <= 0 {
		return 0
	}
	sin2 := 1 - cosTheta*cosTheta
	if sin2 <= 0 {
		return 1
	}
	b := 1 / (m.Alpha * math.Sqrt(sin2) / cosTheta)
	if b >= 1.6 {
		return 1
	}
	return (3.535*b + 2.181*b*b) / (1 + 2.276*b + 2.577*b*b)
}

func (m *Microfacet) Eval(q *BSDFQuery) core.Vec3 {
	if q.Measure != MeasureSolidAngle || !sameHemisphereUp(q) {
		return core.Vec3{}
	}
	cosI, cosO := core.CosTheta(q.Wi), core.CosTheta(q.Wo)
	wh := q.Wi.Add(q.Wo).Normalize()

	d := warp.BeckmannD(core.CosTheta(wh), m.Alpha)
	f := FresnelDielectric(wh.Dot(q.Wi), m.ExtIOR, m.IntIOR)
	g := m.smithBeckmannG1(q.Wi, wh) * m.smithBeckmannG1(q.Wo, wh)

	specular := m.ks * d * f * g / (4 * cosI * cosO)
	return m.Kd.Multiply(1 / math.Pi).Add(core.Splat(specular))
}

func (m *Microfacet) Pdf(q *BSDFQuery) float64 {
	if q.Measure != MeasureSolidAngle || !sameHemisphereUp(q) {
		return 0
	}
	wh := q.Wi.Add(q.Wo).Normalize()
	jacobian := 1 / (4 * wh.Dot(q.Wo))
	return m.ks*warp.SquareToBeckmannPdf(wh, m.Alpha)*jacobian +
		(1-m.ks)*warp.SquareToCosineHemispherePdf(q.Wo)
}

func (m *Microfacet) Sample(q *BSDFQuery, sample core.Vec2) core.Vec3 {
	if core.CosTheta(q.Wi) <= 0 {
		return core.Vec3{}
	}
	q.Measure = MeasureSolidAngle
	q.Eta = 1

	if sample.X < m.ks {
		sample.X /= m.ks
		wh := warp.SquareToBeckmann(sample, m.Alpha)
		q.Wo = core.ReflectAbout(q.Wi, wh)
	} else {
		sample.X = (sample.X - m.ks) / (1 - m.ks)
		q.Wo = warp.SquareToCosineHemisphere(sample)
	}

	if core.CosTheta(q.Wo) <= 0 {
		return core.Vec3{}
	}
	pdf := m.Pdf(q)
	if pdf <= 0 {
		return core.Vec3{}
	}
	return m.Eval(q).Multiply(core.CosTheta(q.Wo) / pdf)
}

func (m *Microfacet) IsDiffuse() bool { return true }
