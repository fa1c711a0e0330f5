package scene

import (
	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/geometry"
	"github.com/df07/go-light-transport/pkg/lights"
	"github.com/df07/go-light-transport/pkg/material"
)

// NewCausticScene focuses a point light through a glass sphere onto a diffuse
// floor inside a small room, rendered with photon mapping
func NewCausticScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	config := geometry.CameraConfig{
		Center:      core.NewVec3(0, 2.5, 5),
		LookAt:      core.NewVec3(0, 0.6, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 4.0 / 3.0,
		VFov:        45,
	}
	for _, o := range cameraOverrides {
		config = geometry.MergeCameraConfig(config, o)
	}

	s := New("caustic", config)
	s.SamplingConfig.SamplesPerPixel = 32
	s.IntegratorConfig.Type = "photon_mapper"
	s.IntegratorConfig.PhotonCount = 500000

	floor := material.NewLambertian(core.NewVec3(0.75, 0.75, 0.7))
	wall := material.NewLambertian(core.NewVec3(0.6, 0.6, 0.65))
	s.AddShapes(NewGroundQuad(core.NewVec3(0, 0, 0), 8, floor))
	// Back wall facing +Z
	s.AddShapes(geometry.NewQuad(core.NewVec3(-4, 0, -3), core.NewVec3(8, 0, 0), core.NewVec3(0, 5, 0), wall))

	s.AddShapes(
		geometry.NewSphere(core.NewVec3(0, 0.8, 0), 0.8, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(-1.8, 0.4, -0.8), 0.4, material.NewMirror(core.NewVec3(0.9, 0.9, 0.9))),
	)
	s.AddLight(lights.NewPointLight(core.NewVec3(120, 110, 100), core.NewVec3(0.5, 3.5, 0.5)))

	return s
}
