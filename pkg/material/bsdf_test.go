package material

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-light-transport/pkg/core"
)

func randomUpperDirection(random *rand.Rand) core.Vec3 {
	for {
		v := core.NewVec3(random.Float64()*2-1, random.Float64()*2-1, random.Float64())
		if l := v.Length(); l > 0.1 && l <= 1 && v.Z > 0.05 {
			return v.Normalize()
		}
	}
}

func continuousBSDFs() map[string]BSDF {
	config := DefaultPrincipledConfig()
	config.Clearcoat = 0.7
	config.Sheen = 0.4
	config.Roughness = 0.35
	config.Metallic = 0.3
	return map[string]BSDF{
		"lambertian":  NewLambertian(core.NewVec3(0.8, 0.5, 0.2)),
		"microfacet":  NewMicrofacet(0.2, core.NewVec3(0.3, 0.4, 0.5), 1.5),
		"principled":  NewPrincipled(NewSolidColor(core.NewVec3(0.7, 0.2, 0.1)), config),
		"mix":         NewMix(NewLambertian(core.NewVec3(0.5, 0.5, 0.5)), NewMicrofacet(0.3, core.NewVec3(0.1, 0.1, 0.1), 1.5), 0.4),
		"two-sided":   NewTwoSided(NewLambertian(core.NewVec3(0.6, 0.6, 0.6))),
		"rough-metal": NewPrincipled(NewSolidColor(core.NewVec3(0.9, 0.6, 0.3)), PrincipledConfig{Metallic: 1, Roughness: 0.5, Specular: 0.5}),
	}
}

// TestSampleMatchesEvalOverPdf checks that the sampled weight is f·cos/pdf for every continuous BSDF
func TestSampleMatchesEvalOverPdf(t *testing.T) {
	for name, bsdf := range continuousBSDFs() {
		t.Run(name, func(t *testing.T) {
			random := rand.New(rand.NewSource(7))
			checked := 0
			for i := 0; i < 2000; i++ {
				q := NewBSDFQuery(randomUpperDirection(random), core.NewVec2(0.5, 0.5), core.Vec3{})
				weight := bsdf.Sample(q, core.NewVec2(random.Float64(), random.Float64()))
				if weight.IsZero() {
					continue
				}
				if q.Measure != MeasureSolidAngle {
					t.Fatalf("measure = %v, expected solid angle", q.Measure)
				}
				pdf := bsdf.Pdf(q)
				if pdf <= 0 {
					t.Fatalf("sample %d: nonzero weight %v with pdf %v", i, weight, pdf)
				}
				expected := bsdf.Eval(q).Multiply(core.CosTheta(q.Wo) / pdf)
				for axis := 0; axis < 3; axis++ {
					got, want := weight.Axis(axis), expected.Axis(axis)
					if math.Abs(got-want) > 1e-6*math.Max(1, math.Abs(want)) {
						t.Fatalf("sample %d channel %d: weight %v, eval·cos/pdf %v", i, axis, got, want)
					}
				}
				checked++
			}
			if checked < 500 {
				t.Errorf("only %d samples produced a weight", checked)
			}
		})
	}
}

func TestEvalAndPdfVanishBelowSurface(t *testing.T) {
	wi := core.NewVec3(0.3, 0.1, 0.9).Normalize()
	wo := core.NewVec3(0.2, -0.4, -0.7).Normalize()
	for name, bsdf := range continuousBSDFs() {
		if name == "two-sided" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			q := NewBSDFEvalQuery(wi, wo, core.NewVec2(0.5, 0.5), core.Vec3{})
			if f := bsdf.Eval(q); !f.IsZero() {
				t.Errorf("Eval below surface = %v, expected zero", f)
			}
			if pdf := bsdf.Pdf(q); pdf != 0 {
				t.Errorf("Pdf below surface = %v, expected zero", pdf)
			}
		})
	}
}

func TestDiscreteMeasureHasNoDensity(t *testing.T) {
	wi := core.NewVec3(0, 0, 1)
	wo := core.NewVec3(0, 0, 1)
	q := NewBSDFEvalQuery(wi, wo, core.Vec2{}, core.Vec3{})
	q.Measure = MeasureDiscrete
	if f := NewLambertian(core.NewVec3(1, 1, 1)).Eval(q); !f.IsZero() {
		t.Errorf("Lambertian Eval for discrete measure = %v, expected zero", f)
	}
	if pdf := NewMirror(core.NewVec3(1, 1, 1)).Pdf(q); pdf != 0 {
		t.Errorf("Mirror Pdf = %v, expected zero", pdf)
	}
}

func TestTwoSidedRespondsFromBelow(t *testing.T) {
	albedo := core.NewVec3(0.6, 0.6, 0.6)
	bsdf := NewTwoSided(NewLambertian(albedo))
	q := NewBSDFQuery(core.NewVec3(0.2, 0.1, -0.9).Normalize(), core.Vec2{}, core.Vec3{})
	weight := bsdf.Sample(q, core.NewVec2(0.3, 0.7))
	if weight != albedo {
		t.Errorf("weight = %v, expected %v", weight, albedo)
	}
	if core.CosTheta(q.Wo) >= 0 {
		t.Errorf("sampled direction %v should stay on the incident side", q.Wo)
	}
	if core.CosTheta(q.Wi) >= 0 {
		t.Errorf("Wi was not restored: %v", q.Wi)
	}
	if pdf := bsdf.Pdf(q); pdf <= 0 {
		t.Errorf("Pdf from below = %v, expected positive", pdf)
	}
}

func TestMirrorReflects(t *testing.T) {
	albedo := core.NewVec3(0.9, 0.8, 0.7)
	q := NewBSDFQuery(core.NewVec3(0.6, 0, 0.8), core.Vec2{}, core.Vec3{})
	weight := NewMirror(albedo).Sample(q, core.NewVec2(0.5, 0.5))
	if weight != albedo || q.Measure != MeasureDiscrete {
		t.Errorf("weight = %v measure = %v", weight, q.Measure)
	}
	if want := core.NewVec3(-0.6, 0, 0.8); q.Wo != want {
		t.Errorf("Wo = %v, expected %v", q.Wo, want)
	}
}

func TestDielectricFresnelSplit(t *testing.T) {
	glass := NewDielectric(1.5)
	wi := core.NewVec3(math.Sqrt(0.75), 0, 0.5)
	fresnel := FresnelDielectric(0.5, glass.ExtIOR, glass.IntIOR)

	const n = 10000
	reflected := 0
	for i := 0; i < n; i++ {
		q := NewBSDFQuery(wi, core.Vec2{}, core.Vec3{})
		weight := glass.Sample(q, core.NewVec2((float64(i)+0.5)/n, 0.5))
		if weight != core.NewVec3(1, 1, 1) {
			t.Fatalf("weight = %v, expected one", weight)
		}
		if q.Measure != MeasureDiscrete {
			t.Fatalf("measure = %v, expected discrete", q.Measure)
		}
		if core.CosTheta(q.Wo) > 0 {
			reflected++
		}
	}
	got := float64(reflected) / n
	if math.Abs(got-fresnel) > 1e-3 {
		t.Errorf("reflected fraction = %v, expected %v", got, fresnel)
	}
}

func TestDielectricSnell(t *testing.T) {
	glass := NewDielectric(1.5)
	tests := []struct {
		name string
		wi   core.Vec3
	}{
		{"entering", core.NewVec3(math.Sin(0.6), 0, math.Cos(0.6))},
		{"leaving", core.NewVec3(math.Sin(0.3), 0, -math.Cos(0.3))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewBSDFQuery(tt.wi, core.Vec2{}, core.Vec3{})
			glass.Sample(q, core.NewVec2(0.9999, 0.5))
			if core.CosTheta(q.Wo)*core.CosTheta(tt.wi) >= 0 {
				t.Fatalf("expected refraction, got Wo = %v", q.Wo)
			}
			sinI := math.Hypot(tt.wi.X, tt.wi.Y)
			sinT := math.Hypot(q.Wo.X, q.Wo.Y)
			if math.Abs(sinI*q.Eta-sinT) > 1e-9 {
				t.Errorf("sinT = %v, expected %v", sinT, sinI*q.Eta)
			}
			if q.Wo.X*tt.wi.X > 0 {
				t.Errorf("refracted direction %v should cross to the opposite tangent side", q.Wo)
			}
		})
	}
}

func TestFresnelDielectric(t *testing.T) {
	if got := FresnelDielectric(1, 1, 1.5); math.Abs(got-0.04) > 1e-9 {
		t.Errorf("normal incidence = %v, expected 0.04", got)
	}
	if got := FresnelDielectric(-0.1, 1, 1.5); got != 1 {
		t.Errorf("grazing from inside = %v, expected total internal reflection", got)
	}
	if got := FresnelDielectric(0.5, 1.3, 1.3); got != 0 {
		t.Errorf("index matched interface = %v, expected zero", got)
	}
}
