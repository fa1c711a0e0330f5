package geometry

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/lights"
	"github.com/df07/go-light-transport/pkg/material"
)

// Quad represents a rectangular surface defined by a corner and two edge vectors.
// Its outward normal is U × V.
type Quad struct {
	Corner core.Vec3 // One corner of the quad
	U      core.Vec3 // First edge vector
	V      core.Vec3 // Second edge vector
	Normal core.Vec3 // Normal vector (computed from U × V)
	D      float64   // Plane equation constant: ax + by + cz = d
	W      core.Vec3 // Cached cross product for barycentric coordinates
	Area   float64
	surface
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3, bsdf material.BSDF) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()

	return &Quad{
		Corner:  corner,
		U:       u,
		V:       v,
		Normal:  normal,
		D:       normal.Dot(corner),
		W:       normal.Multiply(1.0 / normal.Dot(cross)),
		Area:    cross.Length(),
		surface: surface{bsdf: bsdf},
	}
}

// SetEmitter makes the quad emit; area lights are attached to it
func (q *Quad) SetEmitter(e lights.Emitter) *Quad {
	q.emitter = e
	attachEmitter(q, e)
	return q
}

// SetNormalMap perturbs shading normals
func (q *Quad) SetNormalMap(nm *material.NormalMap) *Quad {
	q.normalMap = nm
	return q
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64) (*Intersection, bool) {
	denominator := ray.Direction.Dot(q.Normal)

	// Ray parallel to the plane
	if math.Abs(denominator) < 1e-8 {
		return nil, false
	}

	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator
	if t < tMin || t > tMax {
		return nil, false
	}

	hitPoint := ray.At(t)
	hitVector := hitPoint.Subtract(q.Corner)
	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return nil, false
	}

	its := &Intersection{T: t, Point: hitPoint, UV: core.NewVec2(alpha, beta), Shape: q}
	q.fill(its, ray, core.NewFrameFromTangent(q.Normal, q.U))
	return its, true
}

// BoundingBox pads flat quads so the box has volume
func (q *Quad) BoundingBox() core.AABB {
	box := core.NewAABBFromPoints(
		q.Corner,
		q.Corner.Add(q.U),
		q.Corner.Add(q.V),
		q.Corner.Add(q.U).Add(q.V),
	)
	return box.Expand(1e-4)
}

// SampleSurface picks a point uniformly by area
func (q *Quad) SampleSurface(ref core.Vec3, sample core.Vec2) lights.SurfaceSample {
	return lights.SurfaceSample{
		P:   q.Corner.Add(q.U.Multiply(sample.X)).Add(q.V.Multiply(sample.Y)),
		N:   q.Normal,
		UV:  sample,
		Pdf: 1 / q.Area,
	}
}

func (q *Quad) PdfSurface(ref, p core.Vec3) float64 {
	return 1 / q.Area
}
