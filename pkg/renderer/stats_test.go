package renderer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestCalculateAverageLuminance(t *testing.T) {
	// Red, green, blue and black average to a quarter
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})

	avgLum := CalculateAverageLuminance(img)
	if math.Abs(avgLum-0.25) > 1e-4 {
		t.Errorf("Expected average luminosity 0.25, got %f", avgLum)
	}
}

func TestCalculateAverageLuminance_White(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})

	if avgLum := CalculateAverageLuminance(img); math.Abs(avgLum-1) > 1e-4 {
		t.Errorf("Expected average luminosity 1, got %f", avgLum)
	}
}

func TestPixelStatsVariance(t *testing.T) {
	var ps PixelStats
	if v := ps.Variance(); !v.IsZero() {
		t.Errorf("variance with no samples = %v", v)
	}
	for _, x := range []float64{1, 2, 3} {
		ps.AddSample(core.NewVec3(x, 2*x, 5))
	}

	if diff := cmp.Diff(ps.GetColor(), core.NewVec3(2, 4, 5), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("GetColor diff (-got +want)\n%s", diff)
	}
	// Sample variances 1, 4, 0 divided by n = 3
	want := core.NewVec3(1.0/3, 4.0/3, 0)
	if diff := cmp.Diff(ps.Variance(), want, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Variance diff (-got +want)\n%s", diff)
	}
}
