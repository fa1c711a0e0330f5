package renderer

import (
	"image"
	"time"

	"github.com/df07/go-light-transport/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of samples taken
	AverageSamples  float64       // Average samples per pixel
	MaxSamples      int           // Samples per pixel requested
	RoundsCompleted int           // Rounds of one sample per pixel finished
	Aborted         bool          // Stop or cancellation ended the render early
	Duration        time.Duration // Wall time spent in rounds
}

// PixelStats accumulates one pixel's per-round estimates for variance tracking
type PixelStats struct {
	Sum         core.Vec3 // Σx over rounds
	SumSq       core.Vec3 // Σx² over rounds
	SampleCount int
}

// AddSample adds one round estimate
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.Sum = ps.Sum.Add(color)
	ps.SumSq = ps.SumSq.Add(color.MultiplyVec(color))
	ps.SampleCount++
}

// GetColor returns the mean of the round estimates
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.Sum.Multiply(1.0 / float64(ps.SampleCount))
}

// Variance returns the variance of the mean, (Σx² − (Σx)²/n) / ((n−1)·n),
// per channel. Zero with fewer than two samples.
func (ps *PixelStats) Variance() core.Vec3 {
	n := float64(ps.SampleCount)
	if ps.SampleCount < 2 {
		return core.Vec3{}
	}
	v := ps.SumSq.Subtract(ps.Sum.MultiplyVec(ps.Sum).Multiply(1 / n)).Multiply(1 / ((n - 1) * n))
	return core.NewVec3(max(0, v.X), max(0, v.Y), max(0, v.Z))
}

// CalculateAverageLuminance returns the mean luminance of a tonemapped image
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	if bounds.Empty() {
		return 0
	}
	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			total += core.NewVec3(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255).Luminance()
		}
	}
	return total / float64(bounds.Dx()*bounds.Dy())
}
