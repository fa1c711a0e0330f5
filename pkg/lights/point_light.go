package lights

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/warp"
)

// PointLight emits power uniformly in all directions from a single position
type PointLight struct {
	Power    core.Vec3
	Position core.Vec3
}

// NewPointLight creates a point light with total power Φ
func NewPointLight(power, position core.Vec3) *PointLight {
	return &PointLight{Power: power, Position: position}
}

func (p *PointLight) Type() LightType { return LightTypePoint }

// Sample connects to the light position; the density is a delta and reported as one
func (p *PointLight) Sample(q *EmitterQuery, sample core.Vec2) core.Vec3 {
	toLight := p.Position.Subtract(q.Ref)
	dist := toLight.Length()
	if dist <= 0 {
		return core.Vec3{}
	}
	q.P = p.Position
	q.Wi = toLight.Multiply(1 / dist)
	q.N = q.Wi.Negate()
	q.Pdf = p.Pdf(q)
	q.ShadowRay = core.NewRaySegment(q.Ref, q.Wi, core.Epsilon, dist)
	return p.Eval(q).Multiply(1 / q.Pdf)
}

// Eval returns Φ/(4πd²)
func (p *PointLight) Eval(q *EmitterQuery) core.Vec3 {
	d2 := p.Position.Subtract(q.Ref).LengthSquared()
	if d2 <= 0 {
		return core.Vec3{}
	}
	return p.Power.Multiply(1 / (4 * math.Pi * d2))
}

func (p *PointLight) Pdf(q *EmitterQuery) float64 {
	return 1
}

func (p *PointLight) SamplePhoton(posSample, dirSample core.Vec2) (core.Ray, core.Vec3) {
	return core.NewRay(p.Position, warp.SquareToUniformSphere(dirSample)), p.Power
}
