package material

import (
	"testing"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/loaders"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// TestImageTextureEvaluate tests basic texture sampling
func TestImageTextureEvaluate(t *testing.T) {
	// Layout:
	//   white black
	//   black white
	white := core.NewVec3(1, 1, 1)
	black := core.NewVec3(0, 0, 0)
	texture := NewImageTexture(2, 2, []core.Vec3{white, black, black, white})

	tests := []struct {
		name string
		uv   core.Vec2
		want core.Vec3
	}{
		{"bottom-left", core.NewVec2(0.1, 0.1), black},
		{"bottom-right", core.NewVec2(0.9, 0.1), white},
		{"top-left", core.NewVec2(0.1, 0.9), white},
		{"top-right", core.NewVec2(0.9, 0.9), black},
		{"wraps positive", core.NewVec2(1.1, 0.9), white},
		{"wraps negative", core.NewVec2(-0.1, 0.9), black},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(texture.Evaluate(tt.uv, core.Vec3{}), tt.want); diff != "" {
				t.Errorf("Evaluate diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestImageTextureScaleAndShift(t *testing.T) {
	red := core.NewVec3(1, 0, 0)
	blue := core.NewVec3(0, 0, 1)
	img := &loaders.ImageData{Width: 2, Height: 1, Pixels: []core.Vec3{red, blue}}

	shifted := NewImageTextureFromData(img, core.NewVec2(1, 1), core.NewVec2(0.5, 0), false)
	if diff := cmp.Diff(shifted.Evaluate(core.NewVec2(0.1, 0.5), core.Vec3{}), blue); diff != "" {
		t.Errorf("shifted lookup diff (-got +want)\n%s", diff)
	}

	scaled := NewImageTextureFromData(img, core.NewVec2(2, 1), core.Vec2{}, false)
	if diff := cmp.Diff(scaled.Evaluate(core.NewVec2(0.3, 0.5), core.Vec3{}), blue); diff != "" {
		t.Errorf("scaled lookup diff (-got +want)\n%s", diff)
	}
}

func TestImageTextureLinearize(t *testing.T) {
	img := &loaders.ImageData{Width: 1, Height: 1, Pixels: []core.Vec3{core.NewVec3(0.5, 1, 0)}}
	texture := NewImageTextureFromData(img, core.NewVec2(1, 1), core.Vec2{}, true)
	want := core.NewVec3(0.214041, 1, 0)
	if diff := cmp.Diff(texture.Evaluate(core.NewVec2(0.5, 0.5), core.Vec3{}), want, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("linearized texel diff (-got +want)\n%s", diff)
	}
}

func TestCheckerboard(t *testing.T) {
	a, b := core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0)
	checker := NewCheckerboard(a, b, core.NewVec2(2, 2))
	if got := checker.Evaluate(core.NewVec2(0.1, 0.1), core.Vec3{}); got != a {
		t.Errorf("first check = %v, expected %v", got, a)
	}
	if got := checker.Evaluate(core.NewVec2(0.6, 0.1), core.Vec3{}); got != b {
		t.Errorf("second check = %v, expected %v", got, b)
	}
}

func TestNormalMap_FlatMapKeepsGeometricNormal(t *testing.T) {
	flat := &loaders.ImageData{Width: 1, Height: 1, Pixels: []core.Vec3{core.NewVec3(0.5, 0.5, 1)}}
	nm := NewNormalMap(flat, core.NewVec2(1, 1), core.Vec2{})
	geo := core.NewFrame(core.NewVec3(0, 1, 0))
	sh := nm.Apply(core.NewVec2(0.5, 0.5), geo)
	if diff := cmp.Diff(sh.N, geo.N, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("shading normal diff (-got +want)\n%s", diff)
	}
}

func TestNormalMap_TiltedMap(t *testing.T) {
	tilted := &loaders.ImageData{Width: 1, Height: 1, Pixels: []core.Vec3{core.NewVec3(1, 0.5, 0.5)}}
	nm := NewNormalMap(tilted, core.NewVec2(1, 1), core.Vec2{})
	geo := core.NewFrame(core.NewVec3(0, 0, 1))
	sh := nm.Apply(core.NewVec2(0.5, 0.5), geo)
	if diff := cmp.Diff(sh.N, geo.S, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("tilted normal should follow the tangent, diff (-got +want)\n%s", diff)
	}
}
