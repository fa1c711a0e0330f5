package core

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestVec3_Sanitize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"finite positive", NewVec3(1, 2, 3), NewVec3(1, 2, 3)},
		{"negative", NewVec3(-1, 0.5, -0), NewVec3(0, 0.5, 0)},
		{"nan", NewVec3(math.NaN(), 1, 1), NewVec3(0, 1, 1)},
		{"inf", NewVec3(math.Inf(1), math.Inf(-1), 2), NewVec3(0, 0, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.in.Sanitize(), tt.want); diff != "" {
				t.Errorf("Sanitize diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestFrame_RoundTrip(t *testing.T) {
	normals := []Vec3{
		NewVec3(0, 0, 1),
		NewVec3(0, 0, -1),
		NewVec3(0, 1, 0),
		NewVec3(1, 1, 1).Normalize(),
		NewVec3(-0.3, 0.2, -0.9).Normalize(),
	}
	approx := cmpopts.EquateApprox(0, 1e-9)
	for _, n := range normals {
		f := NewFrame(n)
		if d := math.Abs(f.S.Dot(f.T)) + math.Abs(f.S.Dot(f.N)) + math.Abs(f.T.Dot(f.N)); d > 1e-9 {
			t.Errorf("frame for %v is not orthogonal (%g)", n, d)
		}
		if diff := cmp.Diff(f.ToLocal(n), NewVec3(0, 0, 1), approx); diff != "" {
			t.Errorf("normal should map to +z, diff (-got +want)\n%s", diff)
		}
		v := NewVec3(0.2, -0.7, 0.4)
		if diff := cmp.Diff(f.ToWorld(f.ToLocal(v)), v, approx); diff != "" {
			t.Errorf("round trip diff (-got +want)\n%s", diff)
		}
	}
}

func TestAABB_RayIntersect(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	tests := []struct {
		name string
		ray  Ray
		hit  bool
		near float64
		far  float64
	}{
		{"through center", NewRay(NewVec3(-5, 0, 0), NewVec3(1, 0, 0)), true, 4, 6},
		{"origin inside", NewRay(NewVec3(0, 0, 0), NewVec3(0, 1, 0)), true, Epsilon, 1},
		{"miss", NewRay(NewVec3(-5, 3, 0), NewVec3(1, 0, 0)), false, 0, 0},
		{"segment stops short", NewRaySegment(NewVec3(-5, 0, 0), NewVec3(1, 0, 0), 0, 3), false, 0, 0},
		{"segment clipped", NewRaySegment(NewVec3(-5, 0, 0), NewVec3(1, 0, 0), 0, 5), true, 4, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			near, far, ok := box.RayIntersect(tt.ray)
			if ok != tt.hit {
				t.Fatalf("hit = %v, expected %v", ok, tt.hit)
			}
			if ok && (math.Abs(near-tt.near) > 1e-9 || math.Abs(far-tt.far) > 1e-9) {
				t.Errorf("interval = [%f, %f], expected [%f, %f]", near, far, tt.near, tt.far)
			}
		})
	}
}
