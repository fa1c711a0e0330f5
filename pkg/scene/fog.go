package scene

import (
	"fmt"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/geometry"
	"github.com/df07/go-light-transport/pkg/material"
	"github.com/df07/go-light-transport/pkg/medium"
)

// NewFogScene fills a Cornell box with ground fog that thins out with height
func NewFogScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	s := New("fog", cornellCamera(cameraOverrides...))
	s.SamplingConfig.SamplesPerPixel = 128
	s.IntegratorConfig.Type = "vol_path"

	addCornellWalls(s)
	s.AddShapes(geometry.NewSphere(core.NewVec3(278, 100, 278), 100, material.NewLambertian(core.NewVec3(0.7, 0.7, 0.7))))

	half := cornellBoxSize / 2
	config := medium.DefaultConfig()
	config.SigmaA = core.NewVec3(0.001, 0.001, 0.001)
	config.SigmaS = core.NewVec3(0.004, 0.004, 0.004)
	config.Center = core.NewVec3(half, half, half)
	config.Size = core.NewVec3(half, half, half)
	config.Density = medium.DensityExponential
	config.ExpA = 1
	config.ExpB = 0.006
	config.Phase = medium.NewHenyeyGreenstein(0.3)

	fog, err := medium.New(config)
	if err != nil {
		return nil, fmt.Errorf("while creating fog: %w", err)
	}
	s.AddMedium(fog)
	return s, nil
}
