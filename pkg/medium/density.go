package medium

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/loaders"
)

// DensityField returns the density multiplier at a point inside the medium bounds
type DensityField interface {
	Density(p core.Vec3) float64
}

// ConstantDensity fills the bounds uniformly
type ConstantDensity struct {
	Value float64
}

func (c ConstantDensity) Density(p core.Vec3) float64 { return c.Value }

// ExponentialDensity falls off with height above the bottom of the bounds: a·exp(-b·h)
type ExponentialDensity struct {
	A, B   float64
	Up     core.Vec3
	Origin core.Vec3 // Point at height zero
}

func (e ExponentialDensity) Density(p core.Vec3) float64 {
	h := p.Subtract(e.Origin).Dot(e.Up)
	return e.A * math.Exp(-e.B*h)
}

// NoiseDensity remaps Perlin noise at p·Frequency from [-1, 1] to [0, Max]
type NoiseDensity struct {
	Frequency float64
	Max       float64
}

func (n NoiseDensity) Density(p core.Vec3) float64 {
	v := PerlinNoise(p.Multiply(n.Frequency))
	return (v + 1) * 0.5 * n.Max
}

// GridDensity interpolates a voxel grid stretched over Bounds
type GridDensity struct {
	Grid   *loaders.GridData
	Bounds core.AABB
}

func (g GridDensity) Density(p core.Vec3) float64 {
	size := g.Bounds.Size()
	rel := p.Subtract(g.Bounds.Min)
	// Voxel centres sit at half-integer grid coordinates
	x := rel.X/size.X*float64(g.Grid.SizeX) - 0.5
	y := rel.Y/size.Y*float64(g.Grid.SizeY) - 0.5
	z := rel.Z/size.Z*float64(g.Grid.SizeZ) - 0.5

	x0, y0, z0 := math.Floor(x), math.Floor(y), math.Floor(z)
	fx, fy, fz := x-x0, y-y0, z-z0
	ix, iy, iz := int(x0), int(y0), int(z0)

	c := func(dx, dy, dz int) float64 { return g.Grid.Lookup(ix+dx, iy+dy, iz+dz) }
	c00 := lerp(fx, c(0, 0, 0), c(1, 0, 0))
	c10 := lerp(fx, c(0, 1, 0), c(1, 1, 0))
	c01 := lerp(fx, c(0, 0, 1), c(1, 0, 1))
	c11 := lerp(fx, c(0, 1, 1), c(1, 1, 1))
	return lerp(fz, lerp(fy, c00, c10), lerp(fy, c01, c11))
}
