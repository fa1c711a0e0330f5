package lights

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/warp"
)

// AreaLight emits constant radiance from the front side of an attached shape
type AreaLight struct {
	Radiance core.Vec3
	shape    SurfaceSampler
}

// NewAreaLight creates an area light; a shape must be attached before rendering
func NewAreaLight(radiance core.Vec3) *AreaLight {
	return &AreaLight{Radiance: radiance}
}

func (a *AreaLight) Type() LightType { return LightTypeArea }

// AttachShape links the light to the surface it emits from
func (a *AreaLight) AttachShape(shape SurfaceSampler) {
	a.shape = shape
}

// Validate reports a light without a shape
func (a *AreaLight) Validate() error {
	if a.shape == nil {
		return ErrNoShape
	}
	return nil
}

func (a *AreaLight) mustShape() SurfaceSampler {
	if a.shape == nil {
		panic("lights: there is no shape attached to this area light")
	}
	return a.shape
}

func (a *AreaLight) Sample(q *EmitterQuery, sample core.Vec2) core.Vec3 {
	ss := a.mustShape().SampleSurface(q.Ref, sample)
	q.P = ss.P
	q.N = ss.N
	q.UV = ss.UV

	toLight := q.P.Subtract(q.Ref)
	dist := toLight.Length()
	if dist <= core.Epsilon {
		return core.Vec3{}
	}
	q.Wi = toLight.Multiply(1 / dist)
	q.ShadowRay = core.NewRaySegment(q.Ref, q.Wi, core.Epsilon, dist-core.Epsilon)

	q.Pdf = a.Pdf(q)
	if q.Pdf <= 0 {
		return core.Vec3{}
	}
	return a.Eval(q).Multiply(1 / q.Pdf)
}

// Eval returns Le when Ref lies on the emitting side
func (a *AreaLight) Eval(q *EmitterQuery) core.Vec3 {
	a.mustShape()
	if q.N.Dot(q.Wi) < 0 {
		return a.Radiance
	}
	return core.Vec3{}
}

// Pdf converts the shape's area density to solid angle: pA·d²/cosθ
func (a *AreaLight) Pdf(q *EmitterQuery) float64 {
	shape := a.mustShape()
	cosTheta := q.N.Dot(q.Wi.Negate())
	if cosTheta <= 0 {
		return 0
	}
	d2 := q.P.Subtract(q.Ref).LengthSquared()
	return shape.PdfSurface(q.Ref, q.P) * d2 / cosTheta
}

// SamplePhoton emits cosine-distributed from a uniformly chosen surface point
func (a *AreaLight) SamplePhoton(posSample, dirSample core.Vec2) (core.Ray, core.Vec3) {
	ss := a.mustShape().SampleSurface(core.Vec3{}, posSample)
	dir := core.NewFrame(ss.N).ToWorld(warp.SquareToCosineHemisphere(dirSample))
	ray := core.NewRay(ss.P, dir)
	if ss.Pdf <= 0 {
		return ray, core.Vec3{}
	}
	return ray, a.Radiance.Multiply(math.Pi / ss.Pdf)
}
