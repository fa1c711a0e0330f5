package renderer

import "math"

// ReconstructionFilter weights a sample by its offset from a pixel centre
type ReconstructionFilter interface {
	// Radius is the half-width of the filter support in pixels
	Radius() float64
	// Eval returns the separable filter weight for a one-axis offset
	Eval(x float64) float64
}

// BoxFilter gives every sample within the radius the same weight
type BoxFilter struct {
	R float64
}

// NewBoxFilter creates the half-pixel box filter: each sample lands in exactly one pixel
func NewBoxFilter() *BoxFilter {
	return &BoxFilter{R: 0.5}
}

func (b *BoxFilter) Radius() float64 { return b.R }

func (b *BoxFilter) Eval(x float64) float64 {
	if math.Abs(x) <= b.R {
		return 1
	}
	return 0
}

// GaussianFilter is a truncated Gaussian, shifted so it falls to zero at the radius
type GaussianFilter struct {
	R      float64
	Stddev float64
}

// NewGaussianFilter creates the default reconstruction filter
func NewGaussianFilter() *GaussianFilter {
	return &GaussianFilter{R: 2, Stddev: 0.5}
}

func (g *GaussianFilter) Radius() float64 { return g.R }

func (g *GaussianFilter) Eval(x float64) float64 {
	alpha := -1 / (2 * g.Stddev * g.Stddev)
	return max(0, math.Exp(alpha*x*x)-math.Exp(alpha*g.R*g.R))
}
