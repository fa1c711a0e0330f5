package material

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/warp"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo ColorSource // Base color/reflectance (can be solid or textured)
}

// NewLambertian creates a new lambertian material with solid color
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: NewSolidColor(albedo)}
}

// NewTexturedLambertian creates a new lambertian material with texture
func NewTexturedLambertian(albedoTexture ColorSource) *Lambertian {
	return &Lambertian{Albedo: albedoTexture}
}

// Sample draws a cosine-weighted direction; the weight f·cos/pdf reduces to the albedo
func (l *Lambertian) Sample(q *BSDFQuery, sample core.Vec2) core.Vec3 {
	if core.CosTheta(q.Wi) <= 0 {
		return core.Vec3{}
	}
	q.Measure = MeasureSolidAngle
	q.Wo = warp.SquareToCosineHemisphere(sample)
	q.Eta = 1
	return l.Albedo.Evaluate(q.UV, q.Point)
}

// Eval returns albedo/π above the surface
func (l *Lambertian) Eval(q *BSDFQuery) core.Vec3 {
	if q.Measure != MeasureSolidAngle || !sameHemisphereUp(q) {
		return core.Vec3{}
	}
	return l.Albedo.Evaluate(q.UV, q.Point).Multiply(1.0 / math.Pi)
}

// Pdf returns the cosine-weighted density
func (l *Lambertian) Pdf(q *BSDFQuery) float64 {
	if q.Measure != MeasureSolidAngle || !sameHemisphereUp(q) {
		return 0
	}
	return warp.SquareToCosineHemispherePdf(q.Wo)
}

func (l *Lambertian) IsDiffuse() bool { return true }
