package core

import (
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	// Clone returns an independent sampler of the same kind
	Clone() Sampler
	// Prepare reseeds the sampler for a tile so renders are reproducible
	Prepare(seed int64)
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator
func NewSeededSampler(seed int64) *RandomSampler {
	return &RandomSampler{random: rand.New(rand.NewSource(seed))}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Clone returns a new sampler seeded from this one
func (r *RandomSampler) Clone() Sampler {
	return NewSeededSampler(r.random.Int63())
}

// Prepare reseeds the generator
func (r *RandomSampler) Prepare(seed int64) {
	r.random.Seed(seed + 42) // +42 to avoid seed 0
}

// BalanceHeuristic returns the balance-heuristic MIS weight a/(a+b).
// Zero when both densities are zero.
func BalanceHeuristic(pdfA, pdfB float64) float64 {
	if pdfA+pdfB <= 0 {
		return 0
	}
	return pdfA / (pdfA + pdfB)
}

// PowerHeuristic calculates the power heuristic weight (beta = 2) for two strategies
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f*f+g*g == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}

// MaxRouletteProbability caps the continuation probability of Russian roulette
const MaxRouletteProbability = 0.99

// RussianRoulette decides whether a path with the given throughput continues.
// The path survives with probability min(max channel, 0.99) and the returned
// throughput is divided by that probability. Zero throughput always stops.
func RussianRoulette(throughput Vec3, u float64) (Vec3, bool) {
	q := min(throughput.MaxComponent(), MaxRouletteProbability)
	if q <= 0 {
		return Vec3{}, false
	}
	if u >= q {
		return Vec3{}, false
	}
	return throughput.Multiply(1.0 / q), true
}
