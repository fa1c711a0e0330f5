package scene

import (
	"fmt"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/geometry"
	"github.com/df07/go-light-transport/pkg/lights"
	"github.com/df07/go-light-transport/pkg/material"
	"github.com/df07/go-light-transport/pkg/medium"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name             string
	Camera           *geometry.Camera
	CameraConfig     geometry.CameraConfig
	Shapes           []geometry.Shape // Objects in the scene
	SamplingConfig   SamplingConfig
	IntegratorConfig IntegratorConfig
	BVH              *geometry.BVH // Built by Preprocess

	emitters    []lights.Emitter
	media       []*medium.Medium
	environment lights.Emitter
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int   // Image width, taken from the camera when zero
	Height          int   // Image height, taken from the camera when zero
	SamplesPerPixel int   // Number of sampling rounds
	MaxDepth        int   // Maximum path vertices, 0 for unlimited (roulette only)
	TileSize        int   // Edge length of a render tile in pixels
	ComputeVariance bool  // Track per-pixel variance across rounds
	Seed            int64 // Base seed for per-tile samplers
}

// DefaultSamplingConfig returns the settings used when a scene does not override them
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 64,
		TileSize:        32,
		ComputeVariance: true,
	}
}

// IntegratorConfig selects and parameterises the radiance estimator
type IntegratorConfig struct {
	Type              string  // Estimator name, e.g. "path_mis"
	PhotonCount       int     // Photons to deposit (photon_mapper)
	PhotonRadius      float64 // Gather radius, 0 picks one from the scene extent
	MaxEmissionFactor int     // Give up after PhotonCount*factor emissions without deposits
	AVLength          float64 // Visibility ray length (av)
}

// DefaultIntegratorConfig returns a path tracer with MIS
func DefaultIntegratorConfig() IntegratorConfig {
	return IntegratorConfig{
		Type:              "path_mis",
		PhotonCount:       200000,
		MaxEmissionFactor: 100,
		AVLength:          10,
	}
}

// New creates an empty scene viewed through the given camera
func New(name string, cameraConfig geometry.CameraConfig) *Scene {
	return &Scene{
		Name:             name,
		Camera:           geometry.NewCamera(cameraConfig),
		CameraConfig:     cameraConfig,
		SamplingConfig:   DefaultSamplingConfig(),
		IntegratorConfig: DefaultIntegratorConfig(),
	}
}

// SetCamera replaces the camera, keeping the configuration in sync
func (s *Scene) SetCamera(config geometry.CameraConfig) {
	s.CameraConfig = config
	s.Camera = geometry.NewCamera(config)
}

// AddShapes adds objects to the scene
func (s *Scene) AddShapes(shapes ...geometry.Shape) {
	s.Shapes = append(s.Shapes, shapes...)
}

// AddLight registers an emitter. Area lights must also be attached to a shape
// that is added to the scene.
func (s *Scene) AddLight(e lights.Emitter) {
	if e.Type() == lights.LightTypeEnvironment {
		s.environment = e
	}
	s.emitters = append(s.emitters, e)
}

// AddMedium adds a participating medium
func (s *Scene) AddMedium(m *medium.Medium) {
	s.media = append(s.media, m)
}

// AddQuadLight adds a rectangular area light; it emits on the U × V side
func (s *Scene) AddQuadLight(corner, u, v, radiance core.Vec3) *geometry.Quad {
	light := lights.NewAreaLight(radiance)
	quad := geometry.NewQuad(corner, u, v, material.NewLambertian(core.Vec3{})).SetEmitter(light)
	s.AddLight(light)
	s.AddShapes(quad)
	return quad
}

// AddSphereLight adds a spherical area light
func (s *Scene) AddSphereLight(center core.Vec3, radius float64, radiance core.Vec3) *geometry.Sphere {
	light := lights.NewAreaLight(radiance)
	sphere := geometry.NewSphere(center, radius, material.NewLambertian(core.Vec3{})).SetEmitter(light)
	s.AddLight(light)
	s.AddShapes(sphere)
	return sphere
}

// NewGroundQuad creates a horizontal quad centered at the given point with normal pointing up (0,1,0)
func NewGroundQuad(center core.Vec3, size float64, bsdf material.BSDF) *geometry.Quad {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// (0,0,size) × (size,0,0) points along +Y
	u := core.NewVec3(0, 0, size)
	v := core.NewVec3(size, 0, 0)
	return geometry.NewQuad(corner, u, v, bsdf)
}

// Preprocess builds the BVH, validates emitters and sizes the lights that
// depend on the scene extent
func (s *Scene) Preprocess() error {
	s.BVH = geometry.NewBVH(s.Shapes)

	if s.Camera == nil {
		s.Camera = geometry.NewCamera(s.CameraConfig)
	}
	width, height := s.Camera.Size()
	if s.SamplingConfig.Width == 0 {
		s.SamplingConfig.Width = width
	}
	if s.SamplingConfig.Height == 0 {
		s.SamplingConfig.Height = height
	}

	for i, light := range s.emitters {
		if v, ok := light.(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("while validating light %d (%s): %w", i, light.Type(), err)
			}
		}
		if preprocessor, ok := light.(lights.Preprocessor); ok {
			preprocessor.Preprocess(s.BVH.Center, s.BVH.Radius)
		}
	}
	return nil
}

// Intersect finds the closest surface along the ray's interval
func (s *Scene) Intersect(ray core.Ray) (*geometry.Intersection, bool) {
	return s.BVH.Hit(ray, ray.TMin, ray.TMax)
}

// Occluded reports whether any surface blocks the ray's interval
func (s *Scene) Occluded(ray core.Ray) bool {
	return s.BVH.AnyHit(ray, ray.TMin, ray.TMax)
}

// Lights returns every emitter in the scene
func (s *Scene) Lights() []lights.Emitter { return s.emitters }

// EmitterCount returns the number of emitters
func (s *Scene) EmitterCount() int { return len(s.emitters) }

// RandomEmitter picks an emitter uniformly; nil when the scene has none
func (s *Scene) RandomEmitter(u float64) lights.Emitter {
	n := len(s.emitters)
	if n == 0 {
		return nil
	}
	return s.emitters[min(int(u*float64(n)), n-1)]
}

// Environment returns the environment emitter, or nil
func (s *Scene) Environment() lights.Emitter { return s.environment }

// Media returns every medium in the scene
func (s *Scene) Media() []*medium.Medium { return s.media }

// RandomMedium picks uniformly among the media whose bounds overlap the ray's
// [TMin, TMax] interval and returns the selection probability. It returns nil
// when the interval overlaps none.
func (s *Scene) RandomMedium(ray core.Ray, u float64) (*medium.Medium, float64) {
	var candidates [8]*medium.Medium
	hits := candidates[:0]
	for _, m := range s.media {
		if _, _, ok := m.RayIntersect(ray); ok {
			hits = append(hits, m)
		}
	}
	if len(hits) == 0 {
		return nil, 0
	}
	return hits[min(int(u*float64(len(hits))), len(hits)-1)], 1 / float64(len(hits))
}

// BoundingBox returns the bounds of all shapes and media
func (s *Scene) BoundingBox() core.AABB {
	var box core.AABB
	first := true
	if s.BVH != nil && s.BVH.Root != nil {
		box, first = s.BVH.BoundingBox(), false
	} else {
		for _, shape := range s.Shapes {
			if first {
				box, first = shape.BoundingBox(), false
			} else {
				box = box.Union(shape.BoundingBox())
			}
		}
	}
	for _, m := range s.media {
		if first {
			box, first = m.Bounds(), false
		} else {
			box = box.Union(m.Bounds())
		}
	}
	return box
}
