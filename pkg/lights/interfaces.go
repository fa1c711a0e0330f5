package lights

import (
	"errors"

	"github.com/df07/go-light-transport/pkg/core"
)

type LightType string

const (
	LightTypeArea        LightType = "area"
	LightTypePoint       LightType = "point"
	LightTypeDirectional LightType = "directional"
	LightTypeEnvironment LightType = "environment"
)

// ErrNoShape is reported for an area light that was never attached to a shape
var ErrNoShape = errors.New("area light has no attached shape")

// EmitterQuery carries the arguments and results of an emitter sample/eval/pdf call
type EmitterQuery struct {
	Ref       core.Vec3 // Shading point
	P         core.Vec3 // Point on the emitter
	N         core.Vec3 // Emitter normal at P
	Wi        core.Vec3 // Unit direction from Ref toward P
	Pdf       float64   // Solid-angle density of the sample
	ShadowRay core.Ray  // Visibility ray from Ref toward P
	UV        core.Vec2
}

// NewEmitterQuery creates a query for sampling the emitter from ref
func NewEmitterQuery(ref core.Vec3) *EmitterQuery {
	return &EmitterQuery{Ref: ref}
}

// NewEmitterHitQuery creates a query for an emitter point already found by tracing from ref
func NewEmitterHitQuery(ref, p, n core.Vec3) *EmitterQuery {
	return &EmitterQuery{Ref: ref, P: p, N: n, Wi: p.Subtract(ref).Normalize()}
}

// Emitter is the light source contract
type Emitter interface {
	Type() LightType

	// Sample picks a point on the emitter as seen from q.Ref and returns Le/pdf.
	// It fills P, N, Wi, Pdf and ShadowRay. Zero means the sample failed.
	Sample(q *EmitterQuery, sample core.Vec2) core.Vec3

	// Eval returns the radiance leaving P toward Ref
	Eval(q *EmitterQuery) core.Vec3

	// Pdf returns the solid-angle density Sample would have used for q
	Pdf(q *EmitterQuery) float64

	// SamplePhoton emits a photon and returns its ray and flux weight
	SamplePhoton(posSample, dirSample core.Vec2) (core.Ray, core.Vec3)
}

// IsDelta reports whether the emitter cannot be hit by a traced ray
func IsDelta(e Emitter) bool {
	t := e.Type()
	return t == LightTypePoint || t == LightTypeDirectional
}

// Preprocessor is implemented by emitters that depend on the extent of the scene
type Preprocessor interface {
	Preprocess(center core.Vec3, radius float64)
}

// SurfaceSample is a point drawn from a shape's surface
type SurfaceSample struct {
	P   core.Vec3
	N   core.Vec3
	UV  core.Vec2
	Pdf float64 // Area density
}

// SurfaceSampler is the part of a shape an area light needs
type SurfaceSampler interface {
	SampleSurface(ref core.Vec3, sample core.Vec2) SurfaceSample
	PdfSurface(ref, p core.Vec3) float64
}
