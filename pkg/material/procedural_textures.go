package material

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/loaders"
)

// NewCheckerboardTexture creates a checkerboard image texture with checkSize-pixel checks
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Vec3) *ImageTexture {
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/checkSize+y/checkSize)%2 == 0 {
				pixels[y*width+x] = color1
			} else {
				pixels[y*width+x] = color2
			}
		}
	}

	return NewImageTexture(width, height, pixels)
}

// SkyConfig describes a procedural latitude-longitude sky
type SkyConfig struct {
	Zenith    core.Vec3 // Radiance straight up
	Horizon   core.Vec3 // Radiance at the horizon
	Ground    core.Vec3 // Radiance below the horizon
	SunDir    core.Vec3 // Direction toward the sun (y up)
	SunColor  core.Vec3
	SunRadius float64 // Angular radius in radians
}

// NewSkyImage renders a lat-long environment image. Row 0 is straight up (+Y),
// column 0 is φ = 0 around the Y axis.
func NewSkyImage(width, height int, config SkyConfig) *loaders.ImageData {
	pixels := make([]core.Vec3, width*height)
	sunDir := config.SunDir.Normalize()
	cosSun := math.Cos(config.SunRadius)

	for y := 0; y < height; y++ {
		theta := (float64(y) + 0.5) / float64(height) * math.Pi
		for x := 0; x < width; x++ {
			phi := (float64(x) + 0.5) / float64(width) * 2 * math.Pi
			dir := core.NewVec3(math.Sin(theta)*math.Cos(phi), math.Cos(theta), math.Sin(theta)*math.Sin(phi))

			var c core.Vec3
			if dir.Y >= 0 {
				t := math.Pow(1-dir.Y, 3)
				c = lerpVec(t, config.Zenith, config.Horizon)
			} else {
				c = config.Ground
			}
			if dir.Dot(sunDir) >= cosSun {
				c = c.Add(config.SunColor)
			}
			pixels[y*width+x] = c
		}
	}

	return &loaders.ImageData{Width: width, Height: height, Pixels: pixels}
}
