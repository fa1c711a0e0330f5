package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/df07/go-light-transport/pkg/core"
)

// ImageData contains loaded image data as Vec3 color array
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major, row 0 at the top
}

// At returns the pixel at (x, y) clamped to the image bounds
func (d *ImageData) At(x, y int) core.Vec3 {
	x = max(0, min(d.Width-1, x))
	y = max(0, min(d.Height-1, y))
	return d.Pixels[y*d.Width+x]
}

// LoadImage loads a PNG, JPEG, BMP or TIFF image and converts it to a Vec3 color array.
// Values are left gamma-encoded; callers linearize where needed.
func LoadImage(filename string) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("while opening image: %w", err)
	}
	defer file.Close()

	return DecodeImage(file)
}

// DecodeImage decodes any registered image format from r
func DecodeImage(r io.Reader) (*ImageData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("while decoding image: %w", err)
	}

	b := img.Bounds()
	data := &ImageData{Width: b.Dx(), Height: b.Dy(), Pixels: make([]core.Vec3, b.Dx()*b.Dy())}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := data.Pixels[(y-b.Min.Y)*data.Width:]
		for x := b.Min.X; x < b.Max.X; x++ {
			// 16-bit channels, alpha ignored
			r, g, bl, _ := img.At(x, y).RGBA()
			row[x-b.Min.X] = core.NewVec3(float64(r)/0xffff, float64(g)/0xffff, float64(bl)/0xffff)
		}
	}
	return data, nil
}
