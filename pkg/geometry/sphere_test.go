package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/lights"
	"github.com/df07/go-light-transport/pkg/material"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			// The geometric normal stays outward from inside
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if diff := cmp.Diff(hit.GeoFrame.N, tt.expectedNormal, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("normal diff (-got +want)\n%s", diff)
			}
			if hit.Shape != sphere {
				t.Error("intersection does not point back at the sphere")
			}
		})
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	if hit, isHit := sphere.Hit(ray, 0.001, 0.5); isHit {
		t.Errorf("Expected miss due to tMax bound, but got hit at t=%f", hit.T)
	}
	if hit, isHit := sphere.Hit(ray, 3.5, 1000.0); isHit {
		t.Errorf("Expected miss due to tMin bound, but got hit at t=%f", hit.T)
	}
	hit, isHit := sphere.Hit(ray, 1.5, 1000.0)
	if !isHit || math.Abs(hit.T-3) > 1e-9 {
		t.Errorf("Expected far root at t=3, got %v %v", hit, isHit)
	}
}

func TestSphere_FrameIsOrthonormal(t *testing.T) {
	sphere := NewSphere(core.NewVec3(1, 2, 3), 2.0, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	ray := core.NewRay(core.NewVec3(5, 3, 4), core.NewVec3(1, 2, 3).Subtract(core.NewVec3(5, 3, 4)).Normalize())
	hit, ok := sphere.Hit(ray, core.Epsilon, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}
	f := hit.ShFrame
	for name, v := range map[string]float64{
		"S·T": f.S.Dot(f.T), "S·N": f.S.Dot(f.N), "T·N": f.T.Dot(f.N),
		"|S|-1": f.S.Length() - 1, "|T|-1": f.T.Length() - 1, "|N|-1": f.N.Length() - 1,
	} {
		if math.Abs(v) > 1e-9 {
			t.Errorf("%s = %v", name, v)
		}
	}
	if hit.UV.X < 0 || hit.UV.X > 1 || hit.UV.Y < 0 || hit.UV.Y > 1 {
		t.Errorf("UV %v outside the unit square", hit.UV)
	}
	if hit.BSDF == nil {
		t.Error("intersection lost the BSDF")
	}
}

func TestSphere_SampleSurface(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 1, 0), 0.5, nil)
	sampler := core.NewSeededSampler(1)
	for i := 0; i < 100; i++ {
		ss := sphere.SampleSurface(core.Vec3{}, sampler.Get2D())
		if d := ss.P.Subtract(sphere.Center).Length(); math.Abs(d-0.5) > 1e-9 {
			t.Fatalf("sample %v is %v from the centre", ss.P, d)
		}
		if math.Abs(ss.Pdf-1/math.Pi) > 1e-12 || ss.Pdf != sphere.PdfSurface(core.Vec3{}, ss.P) {
			t.Fatalf("pdf = %v, expected 1/(4πr²)", ss.Pdf)
		}
	}
}

func TestSphere_EmitterAttachment(t *testing.T) {
	light := lights.NewAreaLight(core.NewVec3(1, 1, 1))
	sphere := NewSphere(core.Vec3{}, 1, nil).SetEmitter(light)
	if err := light.Validate(); err != nil {
		t.Errorf("area light not attached: %v", err)
	}
	hit, ok := sphere.Hit(core.NewRay(core.NewVec3(0, 0, 3), core.NewVec3(0, 0, -1)), core.Epsilon, math.Inf(1))
	if !ok || hit.Emitter != light {
		t.Errorf("intersection emitter = %v", hit)
	}
}
