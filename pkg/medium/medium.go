package medium

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/loaders"
)

var (
	ErrZeroMaxDensity         = errors.New("medium: max density cannot be 0")
	ErrMissingPhaseFunction   = errors.New("medium: no phase function")
	ErrDuplicatePhaseFunction = errors.New("medium: there is already a phase function defined")
	ErrMissingGrid            = errors.New("medium: grid density needs grid data")
	ErrInvalidCoefficients    = errors.New("medium: coefficients must be non-negative and not all zero")
	ErrDegenerateBounds       = errors.New("medium: bounds have zero volume")
)

// DensityKind selects the density field of a medium
type DensityKind string

const (
	DensityConstant    DensityKind = "constant"
	DensityExponential DensityKind = "exponential"
	DensityNoise       DensityKind = "noise"
	DensityGrid        DensityKind = "grid"
)

// Config describes a participating medium
type Config struct {
	SigmaA       core.Vec3
	SigmaS       core.Vec3
	DensityScale float64
	MaxDensity   float64
	Center       core.Vec3
	Size         core.Vec3 // Half extent of the bounding box

	Density DensityKind

	// Exponential density
	UpDir core.Vec3
	ExpA  float64
	ExpB  float64

	// Noise density
	NoiseFrequency float64

	// Grid density: Grid wins over GridPath
	Grid     *loaders.GridData
	GridPath string

	Phase PhaseFunction
}

// DefaultConfig returns a unit grey scattering cube at the origin with an isotropic phase function
func DefaultConfig() Config {
	return Config{
		SigmaA:         core.NewVec3(1, 1, 1),
		SigmaS:         core.NewVec3(1, 1, 1),
		DensityScale:   1,
		MaxDensity:     1,
		Size:           core.NewVec3(1, 1, 1),
		Density:        DensityConstant,
		UpDir:          core.NewVec3(0, 1, 0),
		ExpA:           1,
		ExpB:           2,
		NoiseFrequency: 4,
		Phase:          Isotropic{},
	}
}

// Query is the per-call record of a free-path query
type Query struct {
	TMax           float64
	T              float64 // Ray parameter of the interaction
	Point          core.Vec3
	HasInteraction bool
}

// NewQuery creates a query limited to distance tMax along the ray
func NewQuery(tMax float64) *Query {
	return &Query{TMax: tMax}
}

// Medium is a bounded heterogeneous participating medium sampled with spectral
// tracking. It is immutable after New and safe for concurrent use.
type Medium struct {
	sigmaS     core.Vec3 // Scaled by the density scale
	sigmaT     core.Vec3
	albedo     core.Vec3
	maxSigmaT  float64
	maxDensity float64
	bounds     core.AABB
	density    DensityField
	phase      PhaseFunction
}

// New validates cfg and builds the medium
func New(cfg Config) (*Medium, error) {
	if cfg.MaxDensity == 0 {
		return nil, ErrZeroMaxDensity
	}
	if cfg.MaxDensity < 0 || cfg.DensityScale <= 0 {
		return nil, fmt.Errorf("max density %v, density scale %v: %w", cfg.MaxDensity, cfg.DensityScale, ErrInvalidCoefficients)
	}
	if cfg.Phase == nil {
		return nil, ErrMissingPhaseFunction
	}
	for axis := 0; axis < 3; axis++ {
		if cfg.SigmaA.Axis(axis) < 0 || cfg.SigmaS.Axis(axis) < 0 {
			return nil, fmt.Errorf("sigma_a %v, sigma_s %v: %w", cfg.SigmaA, cfg.SigmaS, ErrInvalidCoefficients)
		}
	}

	m := &Medium{
		sigmaS:     cfg.SigmaS.Multiply(cfg.DensityScale),
		sigmaT:     cfg.SigmaA.Add(cfg.SigmaS).Multiply(cfg.DensityScale),
		maxDensity: cfg.MaxDensity,
		phase:      cfg.Phase,
	}
	m.maxSigmaT = m.sigmaT.MaxComponent()
	if m.maxSigmaT <= 0 {
		return nil, fmt.Errorf("sigma_t %v: %w", m.sigmaT, ErrInvalidCoefficients)
	}
	m.albedo = m.sigmaS.DivideVec(m.sigmaT)

	size := core.NewVec3(math.Abs(cfg.Size.X), math.Abs(cfg.Size.Y), math.Abs(cfg.Size.Z))
	if size.X == 0 || size.Y == 0 || size.Z == 0 {
		return nil, fmt.Errorf("size %v: %w", cfg.Size, ErrDegenerateBounds)
	}
	m.bounds = core.NewAABB(cfg.Center.Subtract(size), cfg.Center.Add(size))

	switch cfg.Density {
	case DensityConstant, "":
		m.density = ConstantDensity{Value: cfg.MaxDensity}
	case DensityExponential:
		up := cfg.UpDir.Normalize()
		if up.IsZero() {
			up = core.NewVec3(0, 1, 0)
		}
		m.density = ExponentialDensity{A: min(cfg.ExpA, cfg.MaxDensity), B: cfg.ExpB, Up: up, Origin: m.bounds.Min}
	case DensityNoise:
		m.density = NoiseDensity{Frequency: cfg.NoiseFrequency, Max: cfg.MaxDensity}
	case DensityGrid:
		grid := cfg.Grid
		if grid == nil {
			if cfg.GridPath == "" {
				return nil, ErrMissingGrid
			}
			var err error
			if grid, err = loaders.ReadVolumeGrid(cfg.GridPath); err != nil {
				return nil, fmt.Errorf("while loading grid %q: %w", cfg.GridPath, err)
			}
		}
		m.density = GridDensity{Grid: grid, Bounds: m.bounds}
	default:
		return nil, fmt.Errorf("medium: unknown density %q", cfg.Density)
	}
	return m, nil
}

// SetPhaseFunction installs the phase function of a medium that has none
func (m *Medium) SetPhaseFunction(p PhaseFunction) error {
	if m.phase != nil {
		return ErrDuplicatePhaseFunction
	}
	m.phase = p
	return nil
}

func (m *Medium) PhaseFunction() PhaseFunction { return m.phase }
func (m *Medium) Bounds() core.AABB            { return m.bounds }
func (m *Medium) Albedo() core.Vec3            { return m.albedo }
func (m *Medium) SigmaT() core.Vec3            { return m.sigmaT }
func (m *Medium) MaxDensity() float64          { return m.maxDensity }

// DensityAt returns the clamped density at p, zero outside the bounds
func (m *Medium) DensityAt(p core.Vec3) float64 {
	if !m.bounds.Contains(p) {
		return 0
	}
	return max(0, min(m.maxDensity, m.density.Density(p)))
}

// RayIntersect returns the parametric overlap of the ray with the medium bounds
func (m *Medium) RayIntersect(ray core.Ray) (near, far float64, ok bool) {
	return m.bounds.RayIntersect(ray)
}

// Sample draws a free path along ray with spectral tracking and returns the
// per-channel path weight. On a collision before q.TMax it sets q.HasInteraction,
// q.T and q.Point; the weight then includes the scattering albedo. Tentative
// collisions are taken as real with the channel-averaged extinction ratio and
// reweighted per channel, so grey media reduce to plain delta tracking.
func (m *Medium) Sample(ray core.Ray, sampler core.Sampler, q *Query) core.Vec3 {
	q.HasInteraction = false
	weight := core.NewVec3(1, 1, 1)
	near, far, ok := m.bounds.RayIntersect(ray)
	if !ok {
		return weight
	}
	t := max(0, near)
	limit := min(q.TMax, far)
	if math.IsInf(limit, 1) {
		return weight
	}

	majorant := m.maxDensity * m.maxSigmaT
	for {
		t += -math.Log(1-sampler.Get1D()) / majorant
		if t >= limit {
			return weight
		}
		p := ray.At(t)
		rho := m.DensityAt(p)
		sigmaT := m.sigmaT.Multiply(rho / majorant)
		pReal := (sigmaT.X + sigmaT.Y + sigmaT.Z) / 3
		if sampler.Get1D() < pReal {
			q.HasInteraction = true
			q.T = t
			q.Point = p
			return weight.MultiplyVec(m.sigmaS).Multiply(rho / (majorant * pReal))
		}
		weight = core.NewVec3(
			weight.X*(1-sigmaT.X),
			weight.Y*(1-sigmaT.Y),
			weight.Z*(1-sigmaT.Z),
		).Multiply(1 / (1 - pReal))
		if weight.IsZero() {
			return weight
		}
	}
}

// Tr estimates the transmittance along ray up to q.TMax with ratio tracking
func (m *Medium) Tr(ray core.Ray, sampler core.Sampler, q *Query) core.Vec3 {
	tr := core.NewVec3(1, 1, 1)
	near, far, ok := m.bounds.RayIntersect(ray)
	if !ok {
		return tr
	}
	t := max(0, near)
	limit := min(q.TMax, far)
	if math.IsInf(limit, 1) {
		return tr
	}

	majorant := m.maxDensity * m.maxSigmaT
	for {
		t += -math.Log(1-sampler.Get1D()) / majorant
		if t >= limit {
			return tr
		}
		rho := m.DensityAt(ray.At(t))
		tr = core.NewVec3(
			tr.X*max(0, 1-m.sigmaT.X*rho/majorant),
			tr.Y*max(0, 1-m.sigmaT.Y*rho/majorant),
			tr.Z*max(0, 1-m.sigmaT.Z*rho/majorant),
		)
		if tr.IsZero() {
			return tr
		}
	}
}
