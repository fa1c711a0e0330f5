package material

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/loaders"
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x]
	Scale  core.Vec2   // UV repetitions
	Shift  core.Vec2   // UV offset, in units of the image size
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
		Scale:  core.NewVec2(1, 1),
	}
}

// NewImageTextureFromData wraps decoded image data. When linearize is set the
// pixels are treated as sRGB-encoded and converted to linear RGB once.
func NewImageTextureFromData(img *loaders.ImageData, scale, shift core.Vec2, linearize bool) *ImageTexture {
	pixels := img.Pixels
	if linearize {
		pixels = make([]core.Vec3, len(img.Pixels))
		for i, p := range img.Pixels {
			pixels[i] = core.NewVec3(SRGBToLinear(p.X), SRGBToLinear(p.Y), SRGBToLinear(p.Z))
		}
	}
	return &ImageTexture{
		Width:  img.Width,
		Height: img.Height,
		Pixels: pixels,
		Scale:  scale,
		Shift:  shift,
	}
}

// texelIndex maps UV to a wrapped pixel index with nearest-neighbor lookup.
// V=0 is the bottom row of the image.
func texelIndex(uv, scale, shift core.Vec2, width, height int) int {
	x := (uv.X*scale.X + shift.X) * float64(width)
	y := ((1.0-uv.Y)*scale.Y + shift.Y) * float64(height)

	xi := int(math.Floor(x)) % width
	yi := int(math.Floor(y)) % height
	if xi < 0 {
		xi += width
	}
	if yi < 0 {
		yi += height
	}
	return yi*width + xi
}

// Evaluate samples the texture at given UV coordinates using nearest-neighbor filtering
func (t *ImageTexture) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return core.Vec3{}
	}
	return t.Pixels[texelIndex(uv, t.Scale, t.Shift, t.Width, t.Height)]
}
