package loaders

import (
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/df07/go-light-transport/pkg/core"
)

// Array kinds stored in the header
const (
	KindRGB  = "rgb"
	KindGrid = "grid"
)

const floatArrayVersion = 1

// maxFloatArrayValues bounds the payload a header may announce
const maxFloatArrayValues = 1 << 28

// ErrBadFloatArray is returned for malformed or mismatched float array streams
var ErrBadFloatArray = errors.New("malformed float array")

// FloatArray is a dense float32 array with a small self-describing header.
// On disk: uint64 LE header length, a protobuf Struct header {version, kind, dims},
// then the zlib-compressed little-endian payload.
type FloatArray struct {
	Kind string
	Dims []int
	Data []float32
}

func (a *FloatArray) size() int {
	n := 1
	for _, d := range a.Dims {
		n *= d
	}
	return n
}

// WriteFloatArray encodes a to w
func WriteFloatArray(w io.Writer, a *FloatArray) error {
	if len(a.Data) != a.size() {
		return fmt.Errorf("while checking payload: %d values for dims %v: %w", len(a.Data), a.Dims, ErrBadFloatArray)
	}

	dims := make([]interface{}, len(a.Dims))
	for i, d := range a.Dims {
		dims[i] = float64(d)
	}
	hdr, err := structpb.NewStruct(map[string]interface{}{
		"version": float64(floatArrayVersion),
		"kind":    a.Kind,
		"dims":    dims,
	})
	if err != nil {
		return fmt.Errorf("while building header: %w", err)
	}

	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}
	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	zipWriter := zlib.NewWriter(w)
	if err := binary.Write(zipWriter, binary.LittleEndian, a.Data); err != nil {
		return fmt.Errorf("while writing payload: %w", err)
	}
	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}
	return nil
}

// ReadFloatArray decodes one float array from r
func ReadFloatArray(r io.Reader) (*FloatArray, error) {
	var headerLength uint64
	if err := binary.Read(r, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}
	if headerLength > 1<<20 {
		return nil, fmt.Errorf("while reading header length %d: %w", headerLength, ErrBadFloatArray)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := &structpb.Struct{}
	if err := proto.Unmarshal(headerBytes, hdr); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	fields := hdr.GetFields()
	if v := fields["version"].GetNumberValue(); v != floatArrayVersion {
		return nil, fmt.Errorf("bad data layout version %v: %w", v, ErrBadFloatArray)
	}

	a := &FloatArray{Kind: fields["kind"].GetStringValue()}
	total := 1
	for _, d := range fields["dims"].GetListValue().GetValues() {
		n := d.GetNumberValue()
		if n < 0 || n != math.Trunc(n) || n > maxFloatArrayValues {
			return nil, fmt.Errorf("bad dimension %v: %w", n, ErrBadFloatArray)
		}
		if total *= int(n); total > maxFloatArrayValues {
			return nil, fmt.Errorf("dims %v exceed %d values: %w", fields["dims"].GetListValue().AsSlice(), maxFloatArrayValues, ErrBadFloatArray)
		}
		a.Dims = append(a.Dims, int(n))
	}
	if len(a.Dims) == 0 {
		return nil, fmt.Errorf("missing dims: %w", ErrBadFloatArray)
	}
	a.Data = make([]float32, a.size())

	zipReader, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if err := binary.Read(zipReader, binary.LittleEndian, a.Data); err != nil {
		return nil, fmt.Errorf("while reading payload: %w", err)
	}
	return a, nil
}

// FloatImage is a linear HDR RGB image, row 0 at the top
type FloatImage struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFloatImage allocates a black image
func NewFloatImage(width, height int) *FloatImage {
	return &FloatImage{Width: width, Height: height, Pixels: make([]core.Vec3, width*height)}
}

// WriteFloatImage encodes img as an "rgb" float array
func WriteFloatImage(w io.Writer, img *FloatImage) error {
	a := &FloatArray{Kind: KindRGB, Dims: []int{img.Height, img.Width, 3}, Data: make([]float32, 3*len(img.Pixels))}
	for i, p := range img.Pixels {
		a.Data[3*i] = float32(p.X)
		a.Data[3*i+1] = float32(p.Y)
		a.Data[3*i+2] = float32(p.Z)
	}
	return WriteFloatArray(w, a)
}

// ReadFloatImage decodes an "rgb" float array
func ReadFloatImage(r io.Reader) (*FloatImage, error) {
	a, err := ReadFloatArray(r)
	if err != nil {
		return nil, err
	}
	if a.Kind != KindRGB || len(a.Dims) != 3 || a.Dims[2] != 3 {
		return nil, fmt.Errorf("expected rgb image, got %q %v: %w", a.Kind, a.Dims, ErrBadFloatArray)
	}
	img := NewFloatImage(a.Dims[1], a.Dims[0])
	for i := range img.Pixels {
		img.Pixels[i] = core.NewVec3(float64(a.Data[3*i]), float64(a.Data[3*i+1]), float64(a.Data[3*i+2]))
	}
	return img, nil
}

// SaveFloatImage writes img to filename
func SaveFloatImage(filename string, img *FloatImage) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("while creating file: %w", err)
	}
	if err := WriteFloatImage(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFloatImage reads an HDR image from filename
func LoadFloatImage(filename string) (*FloatImage, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("while opening file: %w", err)
	}
	defer f.Close()
	return ReadFloatImage(f)
}

// ToImageData converts to the LDR-agnostic pixel container used by textures and environments
func (img *FloatImage) ToImageData() *ImageData {
	return &ImageData{Width: img.Width, Height: img.Height, Pixels: img.Pixels}
}

// GridData is a scalar voxel grid indexed [z][y][x]
type GridData struct {
	SizeX, SizeY, SizeZ int
	Values              []float32
}

// NewGridData allocates a zero grid
func NewGridData(sx, sy, sz int) *GridData {
	return &GridData{SizeX: sx, SizeY: sy, SizeZ: sz, Values: make([]float32, sx*sy*sz)}
}

// Lookup returns the voxel value, clamping indices to the grid
func (g *GridData) Lookup(x, y, z int) float64 {
	x = max(0, min(g.SizeX-1, x))
	y = max(0, min(g.SizeY-1, y))
	z = max(0, min(g.SizeZ-1, z))
	return float64(g.Values[(z*g.SizeY+y)*g.SizeX+x])
}

// Set stores a voxel value
func (g *GridData) Set(x, y, z int, v float64) {
	g.Values[(z*g.SizeY+y)*g.SizeX+x] = float32(v)
}

// Max returns the largest voxel value
func (g *GridData) Max() float64 {
	m := math.Inf(-1)
	for _, v := range g.Values {
		m = math.Max(m, float64(v))
	}
	return m
}

// WriteVolumeGrid encodes g as a "grid" float array
func WriteVolumeGrid(w io.Writer, g *GridData) error {
	return WriteFloatArray(w, &FloatArray{Kind: KindGrid, Dims: []int{g.SizeZ, g.SizeY, g.SizeX}, Data: g.Values})
}

// DecodeVolumeGrid decodes a "grid" float array from r
func DecodeVolumeGrid(r io.Reader) (*GridData, error) {
	a, err := ReadFloatArray(r)
	if err != nil {
		return nil, err
	}
	if a.Kind != KindGrid || len(a.Dims) != 3 {
		return nil, fmt.Errorf("expected voxel grid, got %q %v: %w", a.Kind, a.Dims, ErrBadFloatArray)
	}
	if a.Dims[0] == 0 || a.Dims[1] == 0 || a.Dims[2] == 0 {
		return nil, fmt.Errorf("empty voxel grid %v: %w", a.Dims, ErrBadFloatArray)
	}
	return &GridData{SizeX: a.Dims[2], SizeY: a.Dims[1], SizeZ: a.Dims[0], Values: a.Data}, nil
}

// ReadVolumeGrid loads a voxel grid from filename
func ReadVolumeGrid(filename string) (*GridData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("while opening volume grid: %w", err)
	}
	defer f.Close()
	return DecodeVolumeGrid(f)
}
