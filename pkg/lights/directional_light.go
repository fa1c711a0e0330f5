package lights

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/warp"
)

// DirectionalLight is a distant source delivering irradiance E along a single direction
type DirectionalLight struct {
	Irradiance core.Vec3
	Direction  core.Vec3 // Direction the light travels

	center core.Vec3
	radius float64
}

// NewDirectionalLight creates a directional light. The scene radius defaults to
// 300 until Preprocess is called.
func NewDirectionalLight(irradiance, direction core.Vec3) *DirectionalLight {
	return &DirectionalLight{Irradiance: irradiance, Direction: direction.Normalize(), radius: 300}
}

func (d *DirectionalLight) Type() LightType { return LightTypeDirectional }

// Preprocess records the bounding sphere of the scene
func (d *DirectionalLight) Preprocess(center core.Vec3, radius float64) {
	d.center = center
	d.radius = radius
}

// Radius returns the scene radius in use
func (d *DirectionalLight) Radius() float64 { return d.radius }

// Sample returns E; the shadow ray reaches twice the scene radius
func (d *DirectionalLight) Sample(q *EmitterQuery, sample core.Vec2) core.Vec3 {
	q.Wi = d.Direction.Negate()
	q.N = d.Direction
	q.P = q.Ref.Add(q.Wi.Multiply(2 * d.radius))
	q.Pdf = 1
	q.ShadowRay = core.NewRaySegment(q.Ref, q.Wi, core.Epsilon, 2*d.radius)
	return d.Irradiance
}

// Eval returns the power crossing the scene, E·πR²
func (d *DirectionalLight) Eval(q *EmitterQuery) core.Vec3 {
	return d.Irradiance.Multiply(math.Pi * d.radius * d.radius)
}

// Pdf is zero: a traced ray never hits a directional light
func (d *DirectionalLight) Pdf(q *EmitterQuery) float64 {
	return 0
}

// SamplePhoton launches from a disk of radius R perpendicular to the light direction
func (d *DirectionalLight) SamplePhoton(posSample, dirSample core.Vec2) (core.Ray, core.Vec3) {
	frame := core.NewFrame(d.Direction)
	disk := warp.SquareToUniformDisk(posSample)
	origin := d.center.
		Subtract(d.Direction.Multiply(d.radius)).
		Add(frame.S.Multiply(disk.X * d.radius)).
		Add(frame.T.Multiply(disk.Y * d.radius))
	return core.NewRay(origin, d.Direction), d.Irradiance.Multiply(math.Pi * d.radius * d.radius)
}
