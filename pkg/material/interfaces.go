package material

import (
	"github.com/df07/go-light-transport/pkg/core"
)

// Measure identifies the measure a sampled direction is expressed in
type Measure int

const (
	MeasureUnknown Measure = iota
	MeasureSolidAngle
	MeasureDiscrete
)

// BSDFQuery carries the arguments of a BSDF sample/eval/pdf call.
// Directions are in the local shading frame (z = shading normal). Wi points back
// toward the previous vertex, Wo toward the next one.
type BSDFQuery struct {
	Wi      core.Vec3
	Wo      core.Vec3
	Measure Measure
	Eta     float64 // Relative index of refraction of the sampled event
	UV      core.Vec2
	Point   core.Vec3
}

// NewBSDFQuery creates a query for sampling given the incident direction
func NewBSDFQuery(wi core.Vec3, uv core.Vec2, point core.Vec3) *BSDFQuery {
	return &BSDFQuery{Wi: wi, Measure: MeasureUnknown, Eta: 1, UV: uv, Point: point}
}

// NewBSDFEvalQuery creates a query for evaluating a known pair of directions
func NewBSDFEvalQuery(wi, wo core.Vec3, uv core.Vec2, point core.Vec3) *BSDFQuery {
	return &BSDFQuery{Wi: wi, Wo: wo, Measure: MeasureSolidAngle, Eta: 1, UV: uv, Point: point}
}

// BSDF is the surface scattering contract
type BSDF interface {
	// Sample draws Wo and returns f·cos/pdf, or zero when sampling fails.
	// It sets Wo, Measure and Eta on the query.
	Sample(q *BSDFQuery, sample core.Vec2) core.Vec3
	// Eval returns the BSDF value (without the cosine) for continuous measure, zero otherwise
	Eval(q *BSDFQuery) core.Vec3
	// Pdf returns the solid-angle density of sampling Wo, zero for discrete measure
	Pdf(q *BSDFQuery) float64
	// IsDiffuse reports whether photons may be stored on this surface
	IsDiffuse() bool
}

// sameHemisphereUp reports whether both local directions lie strictly above the surface
func sameHemisphereUp(q *BSDFQuery) bool {
	return core.CosTheta(q.Wi) > 0 && core.CosTheta(q.Wo) > 0
}
