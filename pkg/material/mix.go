package material

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
)

// Mix blends two BSDFs: f = (1-ratio)·f1 + ratio·f2
type Mix struct {
	Material1 BSDF
	Material2 BSDF
	Ratio     float64 // 0.0 = all material1, 1.0 = all material2
}

// NewMix creates a new mix material
func NewMix(material1, material2 BSDF, ratio float64) *Mix {
	ratio = math.Max(0.0, math.Min(ratio, 1.0))

	return &Mix{
		Material1: material1,
		Material2: material2,
		Ratio:     ratio,
	}
}

// Sample chooses a component with probability equal to its weight. A discrete
// event returns the component's own throughput (the weight cancels); a continuous
// one is reweighted against the full mixture so Sample matches Eval/Pdf.
func (m *Mix) Sample(q *BSDFQuery, sample core.Vec2) core.Vec3 {
	chosen := m.Material1
	if sample.X < m.Ratio {
		sample.X /= m.Ratio
		chosen = m.Material2
	} else if m.Ratio < 1 {
		sample.X = (sample.X - m.Ratio) / (1 - m.Ratio)
	}

	weight := chosen.Sample(q, sample)
	if weight.IsZero() || q.Measure == MeasureDiscrete {
		return weight
	}

	pdf := m.Pdf(q)
	if pdf <= 0 {
		return core.Vec3{}
	}
	return m.Eval(q).Multiply(core.CosTheta(q.Wo) / pdf)
}

func (m *Mix) Eval(q *BSDFQuery) core.Vec3 {
	brdf1 := m.Material1.Eval(q)
	brdf2 := m.Material2.Eval(q)
	return brdf1.Multiply(1.0 - m.Ratio).Add(brdf2.Multiply(m.Ratio))
}

func (m *Mix) Pdf(q *BSDFQuery) float64 {
	return m.Material1.Pdf(q)*(1.0-m.Ratio) + m.Material2.Pdf(q)*m.Ratio
}

func (m *Mix) IsDiffuse() bool {
	return m.Material1.IsDiffuse() || m.Material2.IsDiffuse()
}
