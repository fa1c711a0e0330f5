package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/loaders"
)

// weightedColor is a filter-weighted radiance sum and the sum of the weights
type weightedColor struct {
	Color  core.Vec3
	Weight float64
}

// ImageBlock accumulates filtered samples for a rectangle of the image. It keeps a
// border of the filter radius around the rectangle so neighbouring blocks can be
// merged without seams. An ImageBlock is not safe for concurrent use.
type ImageBlock struct {
	Bounds image.Rectangle // Pixel region of the image the block covers
	filter ReconstructionFilter
	border int
	stride int
	pixels []weightedColor
}

// NewImageBlock creates an empty block covering bounds
func NewImageBlock(bounds image.Rectangle, filter ReconstructionFilter) *ImageBlock {
	border := int(math.Ceil(filter.Radius() - 0.5))
	stride := bounds.Dx() + 2*border
	return &ImageBlock{
		Bounds: bounds,
		filter: filter,
		border: border,
		stride: stride,
		pixels: make([]weightedColor, stride*(bounds.Dy()+2*border)),
	}
}

// Clear resets every pixel, border included
func (b *ImageBlock) Clear() {
	clear(b.pixels)
}

// index maps image coordinates to the storage slot, ok is false outside block and border
func (b *ImageBlock) index(x, y int) (int, bool) {
	lx := x - b.Bounds.Min.X + b.border
	ly := y - b.Bounds.Min.Y + b.border
	if lx < 0 || ly < 0 || lx >= b.stride || ly >= b.Bounds.Dy()+2*b.border {
		return 0, false
	}
	return ly*b.stride + lx, true
}

// Put splats value at the continuous image position pos, weighting every pixel
// within the filter radius. Non-finite values are dropped to black.
func (b *ImageBlock) Put(pos core.Vec2, value core.Vec3) {
	value = value.Sanitize()
	r := b.filter.Radius()

	// Pixel centres sit at half-integer positions
	cx, cy := pos.X-0.5, pos.Y-0.5
	x0, x1 := int(math.Ceil(cx-r)), int(math.Floor(cx+r))
	y0, y1 := int(math.Ceil(cy-r)), int(math.Floor(cy+r))

	for y := y0; y <= y1; y++ {
		wy := b.filter.Eval(float64(y) - cy)
		if wy == 0 {
			continue
		}
		for x := x0; x <= x1; x++ {
			i, ok := b.index(x, y)
			if !ok {
				continue
			}
			w := wy * b.filter.Eval(float64(x)-cx)
			if w == 0 {
				continue
			}
			p := &b.pixels[i]
			p.Color = p.Color.Add(value.Multiply(w))
			p.Weight += w
		}
	}
}

// Merge adds the contents of other, border included, where the two blocks overlap
func (b *ImageBlock) Merge(other *ImageBlock) {
	outer := other.Bounds.Inset(-other.border)
	for y := outer.Min.Y; y < outer.Max.Y; y++ {
		for x := outer.Min.X; x < outer.Max.X; x++ {
			dst, ok := b.index(x, y)
			if !ok {
				continue
			}
			src, _ := other.index(x, y)
			p := &b.pixels[dst]
			p.Color = p.Color.Add(other.pixels[src].Color)
			p.Weight += other.pixels[src].Weight
		}
	}
}

// At returns the normalized radiance of an image pixel inside the block
func (b *ImageBlock) At(x, y int) core.Vec3 {
	i, ok := b.index(x, y)
	if !ok || b.pixels[i].Weight == 0 {
		return core.Vec3{}
	}
	return b.pixels[i].Color.Multiply(1 / b.pixels[i].Weight)
}

// ToFloatImage returns the normalized radiance of the block's rectangle
func (b *ImageBlock) ToFloatImage() *loaders.FloatImage {
	img := loaders.NewFloatImage(b.Bounds.Dx(), b.Bounds.Dy())
	for y := b.Bounds.Min.Y; y < b.Bounds.Max.Y; y++ {
		for x := b.Bounds.Min.X; x < b.Bounds.Max.X; x++ {
			img.Pixels[(y-b.Bounds.Min.Y)*img.Width+x-b.Bounds.Min.X] = b.At(x, y)
		}
	}
	return img
}

// ToImage tonemaps the block's rectangle for display
func (b *ImageBlock) ToImage() *image.RGBA {
	return b.RegionImage(b.Bounds)
}

// RegionImage tonemaps part of the block; the result starts at (0, 0)
func (b *ImageBlock) RegionImage(r image.Rectangle) *image.RGBA {
	r = r.Intersect(b.Bounds)
	img := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x-r.Min.X, y-r.Min.Y, vec3ToColor(b.At(x, y)))
		}
	}
	return img
}

// vec3ToColor converts a Vec3 color to RGBA with proper clamping and gamma correction
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	// Apply gamma correction (gamma = 2.0)
	colorVec = colorVec.GammaCorrect(2.0)
	colorVec = colorVec.Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}
