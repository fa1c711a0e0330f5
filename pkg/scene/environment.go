package scene

import (
	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/geometry"
	"github.com/df07/go-light-transport/pkg/lights"
	"github.com/df07/go-light-transport/pkg/loaders"
	"github.com/df07/go-light-transport/pkg/material"
)

// DefaultSky is the procedural sky used when no environment map is given
func DefaultSky() *loaders.ImageData {
	return material.NewSkyImage(256, 128, material.SkyConfig{
		Zenith:    core.NewVec3(0.3, 0.5, 1.0),
		Horizon:   core.NewVec3(0.9, 0.9, 1.0),
		Ground:    core.NewVec3(0.2, 0.18, 0.15),
		SunDir:    core.NewVec3(0.5, 0.6, 0.3),
		SunColor:  core.NewVec3(200, 180, 150),
		SunRadius: 0.05,
	})
}

// NewEnvironmentScene lights a row of principled spheres with an image-based
// environment. A nil image uses DefaultSky.
func NewEnvironmentScene(env *loaders.ImageData, cameraOverrides ...geometry.CameraConfig) *Scene {
	config := geometry.CameraConfig{
		Center:        core.NewVec3(0, 1.5, 6),
		LookAt:        core.NewVec3(0, 0.7, 0),
		Up:            core.NewVec3(0, 1, 0),
		Width:         480,
		AspectRatio:   16.0 / 9.0,
		VFov:          35,
		Aperture:      0.05,
		FocusDistance: 6,
	}
	for _, o := range cameraOverrides {
		config = geometry.MergeCameraConfig(config, o)
	}

	s := New("environment", config)
	s.SamplingConfig.SamplesPerPixel = 64
	s.IntegratorConfig.Type = "path_mis"

	if env == nil {
		env = DefaultSky()
	}
	s.AddLight(lights.NewEnvironmentLight(env, 1))

	ground := material.NewCheckerboardTexture(256, 256, 32, core.NewVec3(0.7, 0.7, 0.7), core.NewVec3(0.2, 0.2, 0.2))
	s.AddShapes(NewGroundQuad(core.NewVec3(0, 0, 0), 12, material.NewTexturedLambertian(ground)))

	plastic := material.DefaultPrincipledConfig()
	plastic.Roughness = 0.3
	plastic.Clearcoat = 0.8

	metal := material.DefaultPrincipledConfig()
	metal.Metallic = 1
	metal.Roughness = 0.2

	velvet := material.DefaultPrincipledConfig()
	velvet.Roughness = 0.9
	velvet.Sheen = 1

	s.AddShapes(
		geometry.NewSphere(core.NewVec3(-2.2, 0.7, 0), 0.7, material.NewPrincipled(material.NewSolidColor(core.NewVec3(0.8, 0.1, 0.1)), plastic)),
		geometry.NewSphere(core.NewVec3(0, 0.7, 0), 0.7, material.NewPrincipled(material.NewSolidColor(core.NewVec3(0.95, 0.75, 0.4)), metal)),
		geometry.NewSphere(core.NewVec3(2.2, 0.7, 0), 0.7, material.NewPrincipled(material.NewSolidColor(core.NewVec3(0.2, 0.3, 0.7)), velvet)),
		geometry.NewSphere(core.NewVec3(1.1, 0.35, 1.6), 0.35, material.NewMix(
			material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8)),
			material.NewMicrofacet(0.15, core.NewVec3(0.1, 0.4, 0.1), 1.5),
			0.5,
		)),
	)
	return s
}
