package warp

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-light-transport/pkg/core"
)

const strata = 512

// integrateSphere estimates the integral of pdf over the unit sphere with stratified samples
func integrateSphere(pdf func(core.Vec3) float64) float64 {
	random := rand.New(rand.NewSource(42))
	sum := 0.0
	for i := 0; i < strata; i++ {
		for j := 0; j < strata; j++ {
			u := core.NewVec2((float64(i)+random.Float64())/strata, (float64(j)+random.Float64())/strata)
			sum += pdf(SquareToUniformSphere(u))
		}
	}
	return sum / (strata * strata) * 4 * math.Pi
}

// integrateSquare estimates the integral of pdf over [-1,1]^2
func integrateSquare(pdf func(core.Vec2) float64) float64 {
	sum := 0.0
	for i := 0; i < strata; i++ {
		for j := 0; j < strata; j++ {
			p := core.NewVec2(2*(float64(i)+0.5)/strata-1, 2*(float64(j)+0.5)/strata-1)
			sum += pdf(p)
		}
	}
	return sum / (strata * strata) * 4
}

func TestDirectionalPdfsIntegrateToOne(t *testing.T) {
	tests := []struct {
		name      string
		warp      func(core.Vec2) core.Vec3
		pdf       func(core.Vec3) float64
		tolerance float64
	}{
		{"uniform sphere", SquareToUniformSphere, SquareToUniformSpherePdf, 1e-3},
		{"uniform hemisphere", SquareToUniformHemisphere, SquareToUniformHemispherePdf, 1e-3},
		{"cosine hemisphere", SquareToCosineHemisphere, SquareToCosineHemispherePdf, 1e-3},
		{
			"sphere cap",
			func(u core.Vec2) core.Vec3 { return SquareToUniformSphereCap(u, 0.3) },
			func(v core.Vec3) float64 { return SquareToUniformSphereCapPdf(v, 0.3) },
			1e-2,
		},
		{
			"beckmann",
			func(u core.Vec2) core.Vec3 { return SquareToBeckmann(u, 0.3) },
			func(v core.Vec3) float64 { return SquareToBeckmannPdf(v, 0.3) },
			1e-2,
		},
		{
			"gtr1",
			func(u core.Vec2) core.Vec3 { return SquareToGTR1(u, 0.2) },
			func(v core.Vec3) float64 { return SquareToGTR1Pdf(v, 0.2) },
			1e-2,
		},
		{
			"gtr2",
			func(u core.Vec2) core.Vec3 { return SquareToGTR2(u, 0.3) },
			func(v core.Vec3) float64 { return SquareToGTR2Pdf(v, 0.3) },
			1e-2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			integral := integrateSphere(tt.pdf)
			if math.Abs(integral-1) > tt.tolerance {
				t.Errorf("pdf integrates to %f, expected 1", integral)
			}

			random := rand.New(rand.NewSource(7))
			for i := 0; i < 1000; i++ {
				v := tt.warp(core.NewVec2(random.Float64(), random.Float64()))
				p := tt.pdf(v)
				if !(p > 0) || math.IsInf(p, 0) {
					t.Fatalf("pdf of warped point %v is %f, expected finite and positive", v, p)
				}
			}
		})
	}
}

func TestPlanarPdfsIntegrateToOne(t *testing.T) {
	tests := []struct {
		name string
		pdf  func(core.Vec2) float64
	}{
		{"uniform disk", SquareToUniformDiskPdf},
		{"uniform triangle", SquareToUniformTrianglePdf},
		{"uniform square", SquareToUniformSquarePdf},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			integral := integrateSquare(tt.pdf)
			if math.Abs(integral-1) > 1e-2 {
				t.Errorf("pdf integrates to %f, expected 1", integral)
			}
		})
	}
}

func TestCylinderPdf(t *testing.T) {
	random := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		v := SquareToUniformCylinder(core.NewVec2(random.Float64(), random.Float64()))
		if got := SquareToUniformCylinderPdf(v); math.Abs(got-InvFourPi) > 1e-12 {
			t.Fatalf("cylinder pdf = %f, expected 1/4π", got)
		}
	}
	if got := SquareToUniformCylinderPdf(core.NewVec3(0.5, 0, 0)); got != 0 {
		t.Errorf("point off the cylinder has pdf %f", got)
	}
}

func TestPdfsVanishOutsideSupport(t *testing.T) {
	down := core.NewVec3(0, 0, -1)
	notUnit := core.NewVec3(0, 0, 2)
	tests := []struct {
		name string
		got  float64
	}{
		{"hemisphere below", SquareToUniformHemispherePdf(down)},
		{"cosine below", SquareToCosineHemispherePdf(down)},
		{"beckmann below", SquareToBeckmannPdf(down, 0.3)},
		{"gtr1 below", SquareToGTR1Pdf(down, 0.3)},
		{"gtr2 below", SquareToGTR2Pdf(down, 0.3)},
		{"cap outside", SquareToUniformSphereCapPdf(down, 0.5)},
		{"sphere not unit", SquareToUniformSpherePdf(notUnit)},
		{"cosine not unit", SquareToCosineHemispherePdf(notUnit)},
		{"disk outside", SquareToUniformDiskPdf(core.NewVec2(0.9, 0.9))},
		{"triangle outside", SquareToUniformTrianglePdf(core.NewVec2(0.6, 0.6))},
		{"square outside", SquareToUniformSquarePdf(core.NewVec2(1.5, 0.5))},
	}
	for _, tt := range tests {
		if tt.got != 0 {
			t.Errorf("%s: pdf = %f, expected 0", tt.name, tt.got)
		}
	}
}

func TestWarpedPointsStayInSupport(t *testing.T) {
	random := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		u := core.NewVec2(random.Float64(), random.Float64())
		if d := SquareToUniformDisk(u); d.Length() > 1+1e-12 {
			t.Fatalf("disk sample %v outside unit disk", d)
		}
		if b := SquareToUniformTriangle(u); b.X < 0 || b.Y < 0 || b.X+b.Y > 1+1e-12 {
			t.Fatalf("triangle sample %v outside triangle", b)
		}
		if v := SquareToCosineHemisphere(u); v.Z < 0 || math.Abs(v.Length()-1) > 1e-9 {
			t.Fatalf("cosine sample %v not on upper hemisphere", v)
		}
	}
}
