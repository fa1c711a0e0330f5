package scene

import (
	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/geometry"
	"github.com/df07/go-light-transport/pkg/lights"
	"github.com/df07/go-light-transport/pkg/material"
)

// NewDirectScene creates a point light over a diffuse checkerboard plane with a
// few diffuse spheres, rendered with emitter sampling only
func NewDirectScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	config := geometry.CameraConfig{
		Center:      core.NewVec3(0, 3, 6),
		LookAt:      core.NewVec3(0, 0.5, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        40,
	}
	for _, o := range cameraOverrides {
		config = geometry.MergeCameraConfig(config, o)
	}

	s := New("direct", config)
	s.SamplingConfig.SamplesPerPixel = 32
	s.IntegratorConfig.Type = "direct_ems"

	checker := material.NewCheckerboard(core.NewVec3(0.8, 0.8, 0.8), core.NewVec3(0.3, 0.3, 0.3), core.NewVec2(8, 8))
	s.AddShapes(NewGroundQuad(core.NewVec3(0, 0, 0), 10, material.NewTexturedLambertian(checker)))

	s.AddShapes(
		geometry.NewSphere(core.NewVec3(-1.2, 0.5, 0), 0.5, material.NewLambertian(core.NewVec3(0.7, 0.2, 0.2))),
		geometry.NewSphere(core.NewVec3(0, 0.5, -0.5), 0.5, material.NewLambertian(core.NewVec3(0.2, 0.7, 0.2))),
		geometry.NewSphere(core.NewVec3(1.2, 0.5, 0), 0.5, material.NewLambertian(core.NewVec3(0.2, 0.2, 0.7))),
	)
	s.AddLight(lights.NewPointLight(core.NewVec3(300, 300, 300), core.NewVec3(0, 4, 2)))

	return s
}
