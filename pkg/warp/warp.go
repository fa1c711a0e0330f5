// Package warp maps uniform samples on [0,1)^2 to the distributions used for
// importance sampling. Every warp has a matching Pdf that is zero outside its support.
package warp

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
)

const (
	InvPi     = 1.0 / math.Pi
	InvTwoPi  = 1.0 / (2 * math.Pi)
	InvFourPi = 1.0 / (4 * math.Pi)

	// normTolerance is how far from unit length a direction may be and still count as on the sphere
	normTolerance = 1e-4
)

func onUnitSphere(v core.Vec3) bool {
	return math.Abs(1-v.Length()) < normTolerance
}

// SquareToUniformSquare is the identity warp
func SquareToUniformSquare(sample core.Vec2) core.Vec2 {
	return sample
}

func SquareToUniformSquarePdf(p core.Vec2) float64 {
	if p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1 {
		return 1
	}
	return 0
}

// SquareToUniformDisk uses the concentric mapping to avoid rejection sampling
func SquareToUniformDisk(sample core.Vec2) core.Vec2 {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	ux := 2*sample.X - 1
	uy := 2*sample.Y - 1
	if ux == 0 && uy == 0 {
		return core.Vec2{}
	}

	var theta, r float64
	if math.Abs(ux) > math.Abs(uy) {
		r = ux
		theta = math.Pi / 4 * (uy / ux)
	} else {
		r = uy
		theta = math.Pi/2 - math.Pi/4*(ux/uy)
	}
	return core.NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

func SquareToUniformDiskPdf(p core.Vec2) float64 {
	if p.Length() <= 1 {
		return InvPi
	}
	return 0
}

// SquareToUniformCylinder maps onto the unit-radius cylinder with z in [-1, 1]
func SquareToUniformCylinder(sample core.Vec2) core.Vec3 {
	phi := 2 * math.Pi * sample.Y
	return core.NewVec3(math.Cos(phi), math.Sin(phi), 2*sample.X-1)
}

func SquareToUniformCylinderPdf(v core.Vec3) float64 {
	if math.Abs(1-math.Hypot(v.X, v.Y)) < normTolerance && v.Z >= -1 && v.Z <= 1 {
		return InvFourPi
	}
	return 0
}

// SquareToUniformTriangle returns barycentric coordinates (u, v) of a uniform point
// on the triangle; the third coordinate is 1-u-v.
func SquareToUniformTriangle(sample core.Vec2) core.Vec2 {
	su := math.Sqrt(sample.X)
	return core.NewVec2(1-su, sample.Y*su)
}

func SquareToUniformTrianglePdf(p core.Vec2) float64 {
	if p.X >= 0 && p.Y >= 0 && p.X+p.Y <= 1 {
		return 2
	}
	return 0
}

// SquareToUniformSphere uses Archimedes' projection from the cylinder
func SquareToUniformSphere(sample core.Vec2) core.Vec3 {
	c := SquareToUniformCylinder(sample)
	r := math.Sqrt(math.Max(0, 1-c.Z*c.Z))
	return core.NewVec3(r*c.X, r*c.Y, c.Z)
}

func SquareToUniformSpherePdf(v core.Vec3) float64 {
	if onUnitSphere(v) {
		return InvFourPi
	}
	return 0
}

// SquareToUniformSphereCap samples the cap of directions with z >= cosThetaMax
func SquareToUniformSphereCap(sample core.Vec2, cosThetaMax float64) core.Vec3 {
	z := cosThetaMax + sample.X*(1-cosThetaMax)
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * sample.Y
	return core.NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

func SquareToUniformSphereCapPdf(v core.Vec3, cosThetaMax float64) float64 {
	if onUnitSphere(v) && v.Z >= cosThetaMax && cosThetaMax < 1 {
		return InvTwoPi / (1 - cosThetaMax)
	}
	return 0
}

func SquareToUniformHemisphere(sample core.Vec2) core.Vec3 {
	v := SquareToUniformSphere(sample)
	v.Z = math.Abs(v.Z)
	return v
}

func SquareToUniformHemispherePdf(v core.Vec3) float64 {
	if v.Z >= 0 && onUnitSphere(v) {
		return InvTwoPi
	}
	return 0
}

// SquareToCosineHemisphere projects a uniform disk sample up onto the hemisphere (Malley's method)
func SquareToCosineHemisphere(sample core.Vec2) core.Vec3 {
	d := SquareToUniformDisk(sample)
	z := math.Sqrt(math.Max(0, 1-d.X*d.X-d.Y*d.Y))
	return core.NewVec3(d.X, d.Y, z)
}

func SquareToCosineHemispherePdf(v core.Vec3) float64 {
	if v.Z >= 0 && onUnitSphere(v) {
		return v.Z * InvPi
	}
	return 0
}

// SquareToBeckmann samples microfacet normals proportional to D(m)·cos(θm)
func SquareToBeckmann(sample core.Vec2, alpha float64) core.Vec3 {
	phi := 2 * math.Pi * sample.X
	tan2Theta := -alpha * alpha * math.Log(1-sample.Y)
	cosTheta := 1 / math.Sqrt(1+tan2Theta)
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	return core.NewVec3(math.Cos(phi)*sinTheta, math.Sin(phi)*sinTheta, cosTheta)
}

func SquareToBeckmannPdf(m core.Vec3, alpha float64) float64 {
	if m.Z <= 0 || !onUnitSphere(m) {
		return 0
	}
	return BeckmannD(m.Z, alpha) * m.Z
}

// BeckmannD evaluates the Beckmann normal distribution
func BeckmannD(cosTheta, alpha float64) float64 {
	if cosTheta <= 0 {
		return 0
	}
	cos2 := cosTheta * cosTheta
	tan2 := (1 - cos2) / cos2
	alpha2 := alpha * alpha
	return math.Exp(-tan2/alpha2) / (math.Pi * alpha2 * cos2 * cos2)
}

// SquareToGTR1 samples the generalized Trowbridge-Reitz distribution with γ = 1
// (the clearcoat lobe) proportional to D(m)·cos(θm).
func SquareToGTR1(sample core.Vec2, alpha float64) core.Vec3 {
	if alpha >= 1 {
		return SquareToCosineHemisphere(sample)
	}
	phi := 2 * math.Pi * sample.X
	a2 := alpha * alpha
	cosTheta := math.Sqrt(math.Max(0, (1-math.Pow(a2, 1-sample.Y))/(1-a2)))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	return core.NewVec3(math.Cos(phi)*sinTheta, math.Sin(phi)*sinTheta, cosTheta)
}

func SquareToGTR1Pdf(m core.Vec3, alpha float64) float64 {
	if m.Z < 0 || !onUnitSphere(m) {
		return 0
	}
	return GTR1D(m.Z, alpha) * m.Z
}

// GTR1D evaluates the γ = 1 distribution with Berry's normalization
func GTR1D(cosTheta, alpha float64) float64 {
	if alpha >= 1 {
		return InvPi
	}
	a2 := alpha * alpha
	t := 1 + (a2-1)*cosTheta*cosTheta
	return (a2 - 1) / (math.Pi * math.Log(a2) * t)
}

// SquareToGTR2 samples the γ = 2 distribution (GGX) proportional to D(m)·cos(θm)
func SquareToGTR2(sample core.Vec2, alpha float64) core.Vec3 {
	phi := 2 * math.Pi * sample.X
	a2 := alpha * alpha
	cosTheta := math.Sqrt((1 - sample.Y) / (1 + (a2-1)*sample.Y))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	return core.NewVec3(math.Cos(phi)*sinTheta, math.Sin(phi)*sinTheta, cosTheta)
}

func SquareToGTR2Pdf(m core.Vec3, alpha float64) float64 {
	if m.Z < 0 || !onUnitSphere(m) {
		return 0
	}
	return GTR2D(m.Z, alpha) * m.Z
}

// GTR2D evaluates the GGX distribution
func GTR2D(cosTheta, alpha float64) float64 {
	a2 := alpha * alpha
	t := 1 + (a2-1)*cosTheta*cosTheta
	return a2 / (math.Pi * t * t)
}
