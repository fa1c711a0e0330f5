package medium

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/loaders"
)

func absorbingConfig(sigmaA float64) Config {
	cfg := DefaultConfig()
	cfg.SigmaA = core.Splat(sigmaA)
	cfg.SigmaS = core.Vec3{}
	cfg.Size = core.NewVec3(10, 10, 10)
	return cfg
}

func TestNewRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"zero max density", func(c *Config) { c.MaxDensity = 0 }, ErrZeroMaxDensity},
		{"missing phase", func(c *Config) { c.Phase = nil }, ErrMissingPhaseFunction},
		{"grid without data", func(c *Config) { c.Density = DensityGrid }, ErrMissingGrid},
		{"negative sigma", func(c *Config) { c.SigmaA = core.NewVec3(-1, 0, 0) }, ErrInvalidCoefficients},
		{"all zero sigma", func(c *Config) { c.SigmaA, c.SigmaS = core.Vec3{}, core.Vec3{} }, ErrInvalidCoefficients},
		{"flat bounds", func(c *Config) { c.Size = core.NewVec3(1, 0, 1) }, ErrDegenerateBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if _, err := New(cfg); !errors.Is(err, tt.want) {
				t.Errorf("New error = %v, expected %v", err, tt.want)
			}
		})
	}
}

func TestSetPhaseFunctionTwice(t *testing.T) {
	m, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := m.SetPhaseFunction(NewHenyeyGreenstein(0.5)); !errors.Is(err, ErrDuplicatePhaseFunction) {
		t.Errorf("SetPhaseFunction = %v, expected ErrDuplicatePhaseFunction", err)
	}
}

func TestGridLoadedFromFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Density = DensityGrid
	cfg.GridPath = "does-not-exist.grid"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for missing grid file")
	}
}

// TestTransmittanceAbsorbing checks the ratio-tracking estimate against Beer-Lambert
func TestTransmittanceAbsorbing(t *testing.T) {
	m, err := New(absorbingConfig(0.5))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sampler := core.NewSeededSampler(1)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0))

	const n = 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += m.Tr(ray, sampler, NewQuery(2)).X
	}
	got, want := sum/n, math.Exp(-0.5*2)
	if math.Abs(got-want) > 0.015 {
		t.Errorf("mean transmittance = %v, expected %v", got, want)
	}
}

// TestSampleInteractionProbability checks that delta tracking collides with probability 1 - exp(-σt·d)
func TestSampleInteractionProbability(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SigmaA = core.Splat(0.2)
	cfg.SigmaS = core.Splat(0.6)
	cfg.Size = core.NewVec3(10, 10, 10)
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sampler := core.NewSeededSampler(2)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))

	const n = 20000
	hits := 0
	for i := 0; i < n; i++ {
		q := NewQuery(1.5)
		w := m.Sample(ray, sampler, q)
		if q.HasInteraction {
			hits++
			if q.Point.Y <= 0 || q.Point.Y >= 1.5 {
				t.Fatalf("interaction at %v outside the segment", q.Point)
			}
			if math.Abs(w.X-0.75) > 1e-12 {
				t.Fatalf("weight = %v, expected the albedo 0.75", w)
			}
		} else if w != core.NewVec3(1, 1, 1) {
			t.Fatalf("weight without interaction = %v", w)
		}
	}
	got, want := float64(hits)/n, 1-math.Exp(-0.8*1.5)
	if math.Abs(got-want) > 0.015 {
		t.Errorf("interaction probability = %v, expected %v", got, want)
	}
}

func TestRayMissingBoundsIsTransparent(t *testing.T) {
	m, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ray := core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(1, 0, 0))
	q := NewQuery(math.Inf(1))
	if w := m.Sample(ray, core.NewSeededSampler(3), q); q.HasInteraction || w != core.NewVec3(1, 1, 1) {
		t.Errorf("Sample = %v interaction %v, expected a miss", w, q.HasInteraction)
	}
	if tr := m.Tr(ray, core.NewSeededSampler(3), NewQuery(math.Inf(1))); tr != core.NewVec3(1, 1, 1) {
		t.Errorf("Tr = %v, expected one", tr)
	}
}

func TestChromaticTransmittance(t *testing.T) {
	cfg := absorbingConfig(0)
	cfg.SigmaA = core.NewVec3(0.2, 0.5, 1.0)
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sampler := core.NewSeededSampler(4)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))

	const n = 40000
	var sum core.Vec3
	for i := 0; i < n; i++ {
		sum = sum.Add(m.Tr(ray, sampler, NewQuery(1)))
	}
	mean := sum.Multiply(1.0 / n)
	for axis, sigma := range []float64{0.2, 0.5, 1.0} {
		if got, want := mean.Axis(axis), math.Exp(-sigma); math.Abs(got-want) > 0.015 {
			t.Errorf("channel %d transmittance = %v, expected %v", axis, got, want)
		}
	}
}

// TestSampleChromaticWeights checks that spectral tracking weights reproduce
// per-channel transmittance and single-scattering probability
func TestSampleChromaticWeights(t *testing.T) {
	cfg := absorbingConfig(0)
	cfg.SigmaA = core.NewVec3(0.2, 0.5, 1.0)
	cfg.SigmaS = core.Splat(0.3)
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sampler := core.NewSeededSampler(5)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))

	const n = 100000
	var passed, scattered core.Vec3
	for i := 0; i < n; i++ {
		q := NewQuery(1)
		w := m.Sample(ray, sampler, q)
		if q.HasInteraction {
			scattered = scattered.Add(w)
		} else {
			passed = passed.Add(w)
		}
	}
	passed = passed.Multiply(1.0 / n)
	scattered = scattered.Multiply(1.0 / n)

	sigmaT := cfg.SigmaA.Add(cfg.SigmaS)
	for axis := 0; axis < 3; axis++ {
		tr := math.Exp(-sigmaT.Axis(axis))
		if got := passed.Axis(axis); math.Abs(got-tr) > 0.02 {
			t.Errorf("channel %d transmitted weight = %v, expected %v", axis, got, tr)
		}
		want := cfg.SigmaS.Axis(axis) / sigmaT.Axis(axis) * (1 - tr)
		if got := scattered.Axis(axis); math.Abs(got-want) > 0.02 {
			t.Errorf("channel %d scattered weight = %v, expected %v", axis, got, want)
		}
	}
}

func TestDensityFields(t *testing.T) {
	t.Run("exponential", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Density = DensityExponential
		cfg.MaxDensity = 2
		cfg.ExpA = 5 // clamped to the max density
		cfg.ExpB = 1
		m, err := New(cfg)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if got := m.DensityAt(core.NewVec3(0, -1, 0)); math.Abs(got-2) > 1e-12 {
			t.Errorf("density at the bottom = %v, expected 2", got)
		}
		if got, want := m.DensityAt(core.NewVec3(0, 0, 0)), 2*math.Exp(-1); math.Abs(got-want) > 1e-12 {
			t.Errorf("density one unit up = %v, expected %v", got, want)
		}
		if got := m.DensityAt(core.NewVec3(0, 3, 0)); got != 0 {
			t.Errorf("density outside bounds = %v, expected 0", got)
		}
	})

	t.Run("noise", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Density = DensityNoise
		cfg.MaxDensity = 3
		m, err := New(cfg)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		sampler := core.NewSeededSampler(5)
		for i := 0; i < 1000; i++ {
			p := core.NewVec3(sampler.Get1D()*2-1, sampler.Get1D()*2-1, sampler.Get1D()*2-1)
			if d := m.DensityAt(p); d < 0 || d > 3 {
				t.Fatalf("density %v at %v outside [0, 3]", d, p)
			}
		}
	})

	t.Run("grid", func(t *testing.T) {
		grid := loaders.NewGridData(2, 1, 1)
		grid.Set(0, 0, 0, 0)
		grid.Set(1, 0, 0, 1)
		cfg := DefaultConfig()
		cfg.Density = DensityGrid
		cfg.Grid = grid
		m, err := New(cfg)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		tests := []struct {
			x, want float64
		}{
			{-0.5, 0}, // first voxel centre
			{0.5, 1},  // second voxel centre
			{0, 0.5},  // halfway
			{-0.9, 0}, // clamped edge
			{0.25, 0.75},
		}
		for _, tt := range tests {
			if got := m.DensityAt(core.NewVec3(tt.x, 0, 0)); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("density at x=%v = %v, expected %v", tt.x, got, tt.want)
			}
		}
	})
}

func TestPerlinNoise(t *testing.T) {
	if v := PerlinNoise(core.NewVec3(3, -2, 7)); v != 0 {
		t.Errorf("noise on the lattice = %v, expected 0", v)
	}
	p := core.NewVec3(0.3, 1.7, -4.2)
	if PerlinNoise(p) != PerlinNoise(p) {
		t.Error("noise is not deterministic")
	}
	varied := false
	for i := 0; i < 50; i++ {
		v := PerlinNoise(core.NewVec3(float64(i)*0.37, 0.5, 0.25))
		if v < -1.01 || v > 1.01 {
			t.Fatalf("noise %v out of range", v)
		}
		if math.Abs(v) > 0.05 {
			varied = true
		}
	}
	if !varied {
		t.Error("noise is flat")
	}
}
