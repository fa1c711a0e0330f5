package lights

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/loaders"
	"github.com/df07/go-light-transport/pkg/warp"
)

// EnvironmentLight is radiance arriving from infinitely far away, given by a
// latitude-longitude map (row 0 at +Y, θ measured from +Y, φ around Y from +X toward +Z).
// Without a map it is a constant colour.
type EnvironmentLight struct {
	Image    *loaders.ImageData
	Radiance core.Vec3 // Constant radiance when Image is nil
	Scale    float64

	dist   *Distribution2D
	center core.Vec3
	radius float64
}

// NewEnvironmentLight builds the sampling distribution for a lat-long map once
func NewEnvironmentLight(img *loaders.ImageData, scale float64) *EnvironmentLight {
	rows, cols := img.Height, img.Width
	weights := make([]float64, rows*cols)
	sinTheta := make([]float64, rows)
	for r := 0; r < rows; r++ {
		sinTheta[r] = math.Sin((float64(r) + 0.5) / float64(rows) * math.Pi)
		for c := 0; c < cols; c++ {
			weights[r*cols+c] = img.Pixels[r*cols+c].Luminance()
		}
	}
	return &EnvironmentLight{
		Image:  img,
		Scale:  scale,
		dist:   NewDistribution2D(weights, rows, cols, sinTheta),
		radius: 300,
	}
}

// NewUniformEnvironment creates a constant-colour environment
func NewUniformEnvironment(radiance core.Vec3) *EnvironmentLight {
	return &EnvironmentLight{Radiance: radiance, Scale: 1, radius: 300}
}

func (e *EnvironmentLight) Type() LightType { return LightTypeEnvironment }

// Preprocess records the bounding sphere of the scene for photon emission
func (e *EnvironmentLight) Preprocess(center core.Vec3, radius float64) {
	e.center = center
	e.radius = radius
}

func directionToSpherical(dir core.Vec3) (theta, phi float64) {
	theta = math.Acos(max(-1, min(1, dir.Y)))
	phi = math.Atan2(dir.Z, dir.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return theta, phi
}

func sphericalToDirection(theta, phi float64) core.Vec3 {
	sinTheta := math.Sin(theta)
	return core.NewVec3(sinTheta*math.Cos(phi), math.Cos(theta), sinTheta*math.Sin(phi))
}

func (e *EnvironmentLight) cell(dir core.Vec3) (row, col int) {
	theta, phi := directionToSpherical(dir)
	row = min(int(theta/math.Pi*float64(e.Image.Height)), e.Image.Height-1)
	col = min(int(phi/(2*math.Pi)*float64(e.Image.Width)), e.Image.Width-1)
	return row, col
}

// radiance looks up the map for a direction pointing away from the scene
func (e *EnvironmentLight) radiance(dir core.Vec3) core.Vec3 {
	if e.Image == nil {
		return e.Radiance.Multiply(e.Scale)
	}
	row, col := e.cell(dir)
	return e.Image.Pixels[row*e.Image.Width+col].Multiply(e.Scale)
}

// directionPdf is the solid-angle density of sampleDirection
func (e *EnvironmentLight) directionPdf(dir core.Vec3) float64 {
	if e.Image == nil {
		return warp.InvFourPi
	}
	sinTheta := math.Sqrt(max(0, 1-dir.Y*dir.Y))
	if sinTheta <= 0 {
		return 0
	}
	row, col := e.cell(dir)
	rows, cols := float64(e.Image.Height), float64(e.Image.Width)
	return e.dist.Pmf(row, col) * rows * cols / (2 * math.Pi * math.Pi * sinTheta)
}

func (e *EnvironmentLight) sampleDirection(sample core.Vec2) (core.Vec3, float64) {
	if e.Image == nil {
		return warp.SquareToUniformSphere(sample), warp.InvFourPi
	}
	row, col, pmf, fu, fv := e.dist.Sample(sample.X, sample.Y)
	if pmf <= 0 {
		return core.Vec3{}, 0
	}
	theta := (float64(row) + fu) / float64(e.Image.Height) * math.Pi
	phi := (float64(col) + fv) / float64(e.Image.Width) * 2 * math.Pi
	sinTheta := math.Sin(theta)
	if sinTheta <= 0 {
		return core.Vec3{}, 0
	}
	rows, cols := float64(e.Image.Height), float64(e.Image.Width)
	return sphericalToDirection(theta, phi), pmf * rows * cols / (2 * math.Pi * math.Pi * sinTheta)
}

// Sample importance-samples the map proportionally to luminance·sinθ
func (e *EnvironmentLight) Sample(q *EmitterQuery, sample core.Vec2) core.Vec3 {
	dir, pdf := e.sampleDirection(sample)
	if pdf <= 0 {
		q.Pdf = 0
		return core.Vec3{}
	}
	q.Wi = dir
	q.N = dir.Negate()
	q.P = q.Ref.Add(dir.Multiply(2 * e.radius))
	q.Pdf = pdf
	q.ShadowRay = core.NewRaySegment(q.Ref, dir, core.Epsilon, math.Inf(1))
	return e.Eval(q).Multiply(1 / pdf)
}

// Eval returns the radiance arriving along -q.Wi
func (e *EnvironmentLight) Eval(q *EmitterQuery) core.Vec3 {
	return e.radiance(q.Wi)
}

func (e *EnvironmentLight) Pdf(q *EmitterQuery) float64 {
	return e.directionPdf(q.Wi)
}

// SamplePhoton enters the scene from a disk of radius R facing the sampled direction
func (e *EnvironmentLight) SamplePhoton(posSample, dirSample core.Vec2) (core.Ray, core.Vec3) {
	dir, pdf := e.sampleDirection(dirSample)
	if pdf <= 0 {
		return core.NewRay(e.center, core.NewVec3(0, -1, 0)), core.Vec3{}
	}
	frame := core.NewFrame(dir)
	disk := warp.SquareToUniformDisk(posSample)
	origin := e.center.
		Add(dir.Multiply(e.radius)).
		Add(frame.S.Multiply(disk.X * e.radius)).
		Add(frame.T.Multiply(disk.Y * e.radius))
	area := math.Pi * e.radius * e.radius
	return core.NewRay(origin, dir.Negate()), e.radiance(dir).Multiply(area / pdf)
}
