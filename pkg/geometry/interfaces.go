package geometry

import (
	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/lights"
	"github.com/df07/go-light-transport/pkg/material"
)

// Shape interface for objects that can be hit by rays
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*Intersection, bool)
	BoundingBox() core.AABB
	// SampleSurface and PdfSurface let an area light emit from the shape
	lights.SurfaceSampler
}

// Intersection describes the closest surface hit along a ray
type Intersection struct {
	T         float64
	Point     core.Vec3
	GeoFrame  core.Frame // Geometric frame, N is the true outward normal
	ShFrame   core.Frame // Shading frame, perturbed by a normal map if present
	UV        core.Vec2
	FrontFace bool // Ray arrived against the outward normal

	Shape   Shape
	BSDF    material.BSDF
	Emitter lights.Emitter // nil unless the shape emits
}

// ToLocal converts a world direction into the shading frame
func (its *Intersection) ToLocal(v core.Vec3) core.Vec3 {
	return its.ShFrame.ToLocal(v)
}

// ToWorld converts a shading-frame direction back to world space
func (its *Intersection) ToWorld(v core.Vec3) core.Vec3 {
	return its.ShFrame.ToWorld(v)
}

// surface holds what every shape carries besides its geometry
type surface struct {
	bsdf      material.BSDF
	emitter   lights.Emitter
	normalMap *material.NormalMap
}

func (s *surface) fill(its *Intersection, ray core.Ray, geo core.Frame) {
	its.GeoFrame = geo
	its.ShFrame = geo
	if s.normalMap != nil {
		its.ShFrame = s.normalMap.Apply(its.UV, geo)
	}
	its.FrontFace = ray.Direction.Dot(geo.N) < 0
	its.BSDF = s.bsdf
	its.Emitter = s.emitter
}

// attachEmitter links e to shape, completing area lights with their surface
func attachEmitter(shape Shape, e lights.Emitter) {
	if area, ok := e.(*lights.AreaLight); ok {
		area.AttachShape(shape)
	}
}
