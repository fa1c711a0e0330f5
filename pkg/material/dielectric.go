package material

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
)

// Dielectric represents a smooth transparent interface like glass that both reflects and refracts
type Dielectric struct {
	IntIOR float64 // Interior index of refraction
	ExtIOR float64 // Exterior index of refraction
}

// NewDielectric creates a glass-like dielectric surrounded by air
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{IntIOR: refractiveIndex, ExtIOR: 1.000277}
}

// Sample picks reflection or refraction with probability given by the Fresnel term.
// The Fresnel weight cancels, so the returned throughput is one.
func (d *Dielectric) Sample(q *BSDFQuery, sample core.Vec2) core.Vec3 {
	q.Measure = MeasureDiscrete
	cosThetaI := core.CosTheta(q.Wi)

	if sample.X < FresnelDielectric(cosThetaI, d.ExtIOR, d.IntIOR) {
		q.Wo = core.Reflect(q.Wi)
		q.Eta = 1
		return core.NewVec3(1, 1, 1)
	}

	// Snell's law; flip the normal when leaving the interior
	eta := d.ExtIOR / d.IntIOR
	n := core.NewVec3(0, 0, 1)
	if cosThetaI < 0 {
		eta = d.IntIOR / d.ExtIOR
		n = n.Negate()
	}
	wi := q.Wi
	cosN := wi.Dot(n)
	sin2T := eta * eta * (1 - cosN*cosN)
	if sin2T >= 1 {
		// Unreachable unless the Fresnel term and this test disagree numerically
		q.Wo = core.Reflect(q.Wi)
		q.Eta = 1
		return core.NewVec3(1, 1, 1)
	}
	q.Wo = wi.Subtract(n.Multiply(cosN)).Multiply(-eta).Subtract(n.Multiply(math.Sqrt(1 - sin2T))).Normalize()
	q.Eta = eta
	return core.NewVec3(1, 1, 1)
}

// Eval is zero; discrete BSDFs are only reachable through Sample
func (d *Dielectric) Eval(q *BSDFQuery) core.Vec3 {
	return core.Vec3{}
}

func (d *Dielectric) Pdf(q *BSDFQuery) float64 {
	return 0
}

func (d *Dielectric) IsDiffuse() bool { return false }

// FresnelDielectric returns the unpolarized Fresnel reflectance of a smooth
// dielectric interface. cosThetaI < 0 means the ray arrives from the interior.
func FresnelDielectric(cosThetaI, extIOR, intIOR float64) float64 {
	etaI, etaT := extIOR, intIOR
	if extIOR == intIOR {
		return 0
	}
	if cosThetaI < 0 {
		etaI, etaT = etaT, etaI
		cosThetaI = -cosThetaI
	}

	eta := etaI / etaT
	sinThetaTSqr := eta * eta * (1 - cosThetaI*cosThetaI)
	if sinThetaTSqr > 1 {
		return 1 // Total internal reflection
	}
	cosThetaT := math.Sqrt(1 - sinThetaTSqr)

	rs := (etaI*cosThetaI - etaT*cosThetaT) / (etaI*cosThetaI + etaT*cosThetaT)
	rp := (etaT*cosThetaI - etaI*cosThetaT) / (etaT*cosThetaI + etaI*cosThetaT)
	return (rs*rs + rp*rp) / 2
}

// SchlickWeight returns (1 - cos)^5 clamped to [0, 1]
func SchlickWeight(cosTheta float64) float64 {
	m := max(0, min(1, 1-cosTheta))
	return m * m * m * m * m
}
