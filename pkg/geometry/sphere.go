package geometry

import (
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/lights"
	"github.com/df07/go-light-transport/pkg/material"
	"github.com/df07/go-light-transport/pkg/warp"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
	surface
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, bsdf material.BSDF) *Sphere {
	return &Sphere{
		Center:  center,
		Radius:  radius,
		surface: surface{bsdf: bsdf},
	}
}

// SetEmitter makes the sphere emit; area lights are attached to it
func (s *Sphere) SetEmitter(e lights.Emitter) *Sphere {
	s.emitter = e
	attachEmitter(s, e)
	return s
}

// SetNormalMap perturbs shading normals
func (s *Sphere) SetNormalMap(nm *material.NormalMap) *Sphere {
	s.normalMap = nm
	return s
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*Intersection, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return nil, false
		}
	}

	its := &Intersection{T: root, Point: ray.At(root), Shape: s}

	// Outward normal, never flipped; FrontFace records the side
	local := its.Point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	phi := math.Atan2(local.Z, local.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	theta := math.Acos(max(-1, min(1, -local.Y)))
	its.UV = core.NewVec2(phi/(2*math.Pi), theta/math.Pi)

	tangent := core.NewVec3(-local.Z, 0, local.X)
	s.fill(its, ray, core.NewFrameFromTangent(local, tangent))
	return its, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}

func (s *Sphere) area() float64 {
	return 4 * math.Pi * s.Radius * s.Radius
}

// SampleSurface picks a point uniformly by area
func (s *Sphere) SampleSurface(ref core.Vec3, sample core.Vec2) lights.SurfaceSample {
	n := warp.SquareToUniformSphere(sample)
	return lights.SurfaceSample{
		P:   s.Center.Add(n.Multiply(s.Radius)),
		N:   n,
		UV:  sample,
		Pdf: 1 / s.area(),
	}
}

func (s *Sphere) PdfSurface(ref, p core.Vec3) float64 {
	return 1 / s.area()
}
