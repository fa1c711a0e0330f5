package medium

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/warp"
)

// PhaseQuery carries world-space directions. Wi points back toward the previous
// vertex, so light propagates along -Wi; Wo is the scattered direction.
type PhaseQuery struct {
	Wi core.Vec3
	Wo core.Vec3
}

// PhaseFunction describes angular scattering inside a medium
type PhaseFunction interface {
	// Sample sets q.Wo and returns p/pdf
	Sample(q *PhaseQuery, sample core.Vec2) float64
	Eval(q *PhaseQuery) float64
	Pdf(q *PhaseQuery) float64
}

// Isotropic scatters uniformly over the sphere
type Isotropic struct{}

func (Isotropic) Sample(q *PhaseQuery, sample core.Vec2) float64 {
	q.Wo = warp.SquareToUniformSphere(sample)
	return 1
}

func (Isotropic) Eval(q *PhaseQuery) float64 { return warp.InvFourPi }

func (Isotropic) Pdf(q *PhaseQuery) float64 { return warp.InvFourPi }

// HenyeyGreenstein is the one-parameter anisotropic phase function; g > 0 scatters forward
type HenyeyGreenstein struct {
	G float64
}

// NewHenyeyGreenstein clamps g to (-1, 1)
func NewHenyeyGreenstein(g float64) *HenyeyGreenstein {
	return &HenyeyGreenstein{G: max(-0.999, min(0.999, g))}
}

// cosTheta is measured between the propagation direction and Wo
func (h *HenyeyGreenstein) eval(cosTheta float64) float64 {
	g2 := h.G * h.G
	denom := 1 + g2 - 2*h.G*cosTheta
	return warp.InvFourPi * (1 - g2) / (denom * math.Sqrt(denom))
}

func (h *HenyeyGreenstein) Sample(q *PhaseQuery, sample core.Vec2) float64 {
	var cosTheta float64
	if math.Abs(h.G) < 1e-3 {
		cosTheta = 1 - 2*sample.X
	} else {
		g2 := h.G * h.G
		tmp := (1 - g2) / (1 - h.G + 2*h.G*sample.X)
		cosTheta = (1 + g2 - tmp*tmp) / (2 * h.G)
	}
	cosTheta = max(-1, min(1, cosTheta))
	sinTheta := math.Sqrt(max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * sample.Y

	frame := core.NewFrame(q.Wi.Negate())
	q.Wo = frame.ToWorld(core.NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta))
	return 1
}

func (h *HenyeyGreenstein) Eval(q *PhaseQuery) float64 {
	return h.eval(-q.Wi.Dot(q.Wo))
}

func (h *HenyeyGreenstein) Pdf(q *PhaseQuery) float64 {
	return h.eval(-q.Wi.Dot(q.Wo))
}
