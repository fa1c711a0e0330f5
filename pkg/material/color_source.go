package material

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
)

// ColorSource provides spatially-varying colors for materials
type ColorSource interface {
	// Evaluate returns color at given UV coordinates and 3D point
	// UV is used for image textures, point for procedural textures
	Evaluate(uv core.Vec2, point core.Vec3) core.Vec3
}

// SolidColor provides uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV or position
func (s *SolidColor) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	return s.Color
}

// Checkerboard alternates two colors on a UV grid
type Checkerboard struct {
	Color1, Color2 core.Vec3
	Scale          core.Vec2 // Checks per unit of UV
}

// NewCheckerboard creates a UV-space checkerboard
func NewCheckerboard(color1, color2 core.Vec3, scale core.Vec2) *Checkerboard {
	return &Checkerboard{Color1: color1, Color2: color2, Scale: scale}
}

func (c *Checkerboard) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	x := int(math.Floor(uv.X * c.Scale.X))
	y := int(math.Floor(uv.Y * c.Scale.Y))
	if ((x+y)%2+2)%2 == 0 {
		return c.Color1
	}
	return c.Color2
}

// SRGBToLinear converts one gamma-encoded sRGB channel to linear
func SRGBToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}
