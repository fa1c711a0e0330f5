package scene

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/geometry"
	"github.com/df07/go-light-transport/pkg/lights"
	"github.com/df07/go-light-transport/pkg/loaders"
	"github.com/df07/go-light-transport/pkg/material"
	"github.com/df07/go-light-transport/pkg/medium"
	"github.com/google/go-cmp/cmp"
)

func TestBuildAllScenes(t *testing.T) {
	for _, info := range ListScenes() {
		t.Run(info.ID, func(t *testing.T) {
			s, err := Build(info.ID, BuildOptions{Camera: geometry.CameraConfig{Width: 32}})
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if err := s.Preprocess(); err != nil {
				t.Fatalf("Preprocess: %v", err)
			}
			if s.EmitterCount() == 0 {
				t.Error("scene has no emitters")
			}
			if s.IntegratorConfig.Type != info.Integrator {
				t.Errorf("integrator = %q, listed as %q", s.IntegratorConfig.Type, info.Integrator)
			}
			if s.SamplingConfig.Width != 32 || s.SamplingConfig.Height < 1 {
				t.Errorf("resolution = %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
			}

			// The centre ray of every scene should see something
			ray, _ := s.Camera.SampleRay(core.NewVec2(16, float64(s.SamplingConfig.Height)/2), core.NewVec2(0.5, 0.5))
			if _, ok := s.Intersect(ray); !ok && s.Environment() == nil {
				t.Error("centre ray escaped a scene without an environment")
			}
		})
	}
}

func TestBuildUnknownScene(t *testing.T) {
	if _, err := Build("teapot", BuildOptions{}); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("error = %v, expected ErrUnknownScene", err)
	}
}

func TestBuildLoadsAssets(t *testing.T) {
	dir := t.TempDir()

	grid := loaders.NewGridData(4, 4, 4)
	grid.Set(1, 1, 1, 0.5)
	f, err := os.Create(filepath.Join(dir, "plume.grid"))
	if err != nil {
		t.Fatal(err)
	}
	if err := loaders.WriteVolumeGrid(f, grid); err != nil {
		t.Fatal(err)
	}
	f.Close()

	env := loaders.NewFloatImage(8, 4)
	for i := range env.Pixels {
		env.Pixels[i] = core.NewVec3(1, 2, 3)
	}
	if err := loaders.SaveFloatImage(filepath.Join(dir, "studio.radiance"), env); err != nil {
		t.Fatal(err)
	}

	opts := BuildOptions{Resolver: loaders.NewResolver(dir), GridPath: "plume.grid", EnvMap: "studio.radiance"}
	smoke, err := Build("smoke", opts)
	if err != nil {
		t.Fatalf("smoke: %v", err)
	}
	if got := smoke.Media()[0].MaxDensity(); got != 0.5 {
		t.Errorf("smoke max density = %v, expected the grid maximum 0.5", got)
	}

	envScene, err := Build("environment", opts)
	if err != nil {
		t.Fatalf("environment: %v", err)
	}
	envLight, ok := envScene.Environment().(*lights.EnvironmentLight)
	if !ok || envLight.Image.Width != 8 || envLight.Image.Height != 4 {
		t.Errorf("environment light = %#v", envScene.Environment())
	}

	assets, err := DiscoverAssets(opts.Resolver)
	if err != nil {
		t.Fatal(err)
	}
	want := []AssetInfo{
		{Name: "Plume", Kind: "grid", FilePath: filepath.Join(dir, "plume.grid")},
		{Name: "Studio", Kind: "radiance", FilePath: filepath.Join(dir, "studio.radiance")},
	}
	if diff := cmp.Diff(assets, want); diff != "" {
		t.Errorf("assets diff (-got +want)\n%s", diff)
	}

	if _, err := Build("smoke", BuildOptions{Resolver: opts.Resolver, GridPath: "missing.grid"}); err == nil {
		t.Error("expected an error for a missing grid")
	}
}

func TestPreprocessRejectsDetachedAreaLight(t *testing.T) {
	s := New("broken", geometry.CameraConfig{Width: 8, LookAt: core.NewVec3(0, 0, -1)})
	s.AddLight(lights.NewAreaLight(core.NewVec3(1, 1, 1)))
	if err := s.Preprocess(); !errors.Is(err, lights.ErrNoShape) {
		t.Errorf("error = %v, expected ErrNoShape", err)
	}
}

func TestPreprocessSizesDirectionalLight(t *testing.T) {
	s := New("sized", geometry.CameraConfig{Width: 8, LookAt: core.NewVec3(0, 0, -1)})
	s.AddShapes(geometry.NewSphere(core.NewVec3(0, 0, 0), 2, nil))
	light := lights.NewDirectionalLight(core.NewVec3(1, 1, 1), core.NewVec3(0, -1, 0))
	s.AddLight(light)
	if err := s.Preprocess(); err != nil {
		t.Fatal(err)
	}
	if math.Abs(light.Radius()-2*math.Sqrt(3)) > 1e-12 {
		t.Errorf("radius = %v, expected the bounding sphere radius", light.Radius())
	}
}

func TestRandomEmitter(t *testing.T) {
	s := New("lights", geometry.CameraConfig{Width: 8})
	if s.RandomEmitter(0.5) != nil {
		t.Error("empty scene returned an emitter")
	}
	a := lights.NewPointLight(core.NewVec3(1, 1, 1), core.Vec3{})
	b := lights.NewPointLight(core.NewVec3(2, 2, 2), core.Vec3{})
	s.AddLight(a)
	s.AddLight(b)

	tests := []struct {
		u    float64
		want lights.Emitter
	}{
		{0, a}, {0.49, a}, {0.5, b}, {0.999999, b}, {1, b},
	}
	for _, tt := range tests {
		if got := s.RandomEmitter(tt.u); got != tt.want {
			t.Errorf("RandomEmitter(%v) = %v, expected %v", tt.u, got, tt.want)
		}
	}
}

func TestRandomMedium(t *testing.T) {
	newMedium := func(center core.Vec3) *medium.Medium {
		config := medium.DefaultConfig()
		config.Center = center
		m, err := medium.New(config)
		if err != nil {
			t.Fatal(err)
		}
		return m
	}
	s := New("media", geometry.CameraConfig{Width: 8})
	left := newMedium(core.NewVec3(-5, 0, 0))
	right := newMedium(core.NewVec3(5, 0, 0))
	s.AddMedium(left)
	s.AddMedium(right)

	ray := core.NewRay(core.NewVec3(-5, 10, 0), core.NewVec3(0, -1, 0))
	for _, u := range []float64{0, 0.5, 0.99} {
		if got, pdf := s.RandomMedium(ray, u); got != left || pdf != 1 {
			t.Errorf("RandomMedium(%v) = %p, %v; expected the left medium with probability 1", u, got, pdf)
		}
	}

	across := core.NewRay(core.NewVec3(-10, 0, 0), core.NewVec3(1, 0, 0))
	first, pdfFirst := s.RandomMedium(across, 0.1)
	second, pdfSecond := s.RandomMedium(across, 0.9)
	if first != left || second != right || pdfFirst != 0.5 || pdfSecond != 0.5 {
		t.Error("RandomMedium did not split uniformly between overlapping media")
	}

	// A segment that stops before the right medium only sees the left one
	short := core.NewRaySegment(across.Origin, across.Direction, across.TMin, 8)
	if got, pdf := s.RandomMedium(short, 0.9); got != left || pdf != 1 {
		t.Errorf("RandomMedium(short segment) = %p, %v; expected the left medium with probability 1", got, pdf)
	}

	if got, _ := s.RandomMedium(core.NewRay(core.NewVec3(0, 10, 0), core.NewVec3(0, 1, 0)), 0.5); got != nil {
		t.Error("RandomMedium returned a medium for a ray outside all bounds")
	}
}

func TestIntersectHonoursRayInterval(t *testing.T) {
	s := New("interval", geometry.CameraConfig{Width: 8})
	s.AddShapes(geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))
	if err := s.Preprocess(); err != nil {
		t.Fatal(err)
	}

	full := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))
	if its, ok := s.Intersect(full); !ok || math.Abs(its.T-4) > 1e-9 {
		t.Errorf("Intersect = %v %v, expected t=4", its, ok)
	}
	short := core.NewRaySegment(core.Vec3{}, core.NewVec3(0, 0, -1), core.Epsilon, 3.9)
	if _, ok := s.Intersect(short); ok {
		t.Error("Intersect ignored TMax")
	}
	if s.Occluded(short) {
		t.Error("Occluded ignored TMax")
	}
	if !s.Occluded(full) {
		t.Error("Occluded missed the sphere")
	}
}

func TestCornellWallsFaceInward(t *testing.T) {
	s := NewCornellScene()
	center := core.NewVec3(cornellBoxSize/2, cornellBoxSize/2, cornellBoxSize/2)
	for i, shape := range s.Shapes {
		quad, ok := shape.(*geometry.Quad)
		if !ok {
			continue
		}
		mid := quad.Corner.Add(quad.U.Multiply(0.5)).Add(quad.V.Multiply(0.5))
		if quad.Normal.Dot(center.Subtract(mid)) <= 0 {
			t.Errorf("quad %d at %v faces away from the box", i, mid)
		}
	}
}

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"dragon_gold", "Dragon Gold"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}
