package material

import (
	"github.com/df07/go-light-transport/pkg/core"
)

// Mirror is an ideal specular conductor
type Mirror struct {
	Albedo core.Vec3
}

// NewMirror creates a perfect mirror tinted by albedo
func NewMirror(albedo core.Vec3) *Mirror {
	return &Mirror{Albedo: albedo}
}

func (m *Mirror) Sample(q *BSDFQuery, sample core.Vec2) core.Vec3 {
	if core.CosTheta(q.Wi) <= 0 {
		return core.Vec3{}
	}
	q.Measure = MeasureDiscrete
	q.Wo = core.Reflect(q.Wi)
	q.Eta = 1
	return m.Albedo
}

func (m *Mirror) Eval(q *BSDFQuery) core.Vec3 {
	return core.Vec3{}
}

func (m *Mirror) Pdf(q *BSDFQuery) float64 {
	return 0
}

func (m *Mirror) IsDiffuse() bool { return false }
