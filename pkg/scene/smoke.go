package scene

import (
	"fmt"
	"math"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/geometry"
	"github.com/df07/go-light-transport/pkg/lights"
	"github.com/df07/go-light-transport/pkg/loaders"
	"github.com/df07/go-light-transport/pkg/material"
	"github.com/df07/go-light-transport/pkg/medium"
)

// GenerateSmokeGrid builds an n³ voxel plume: a noisy column that widens and fades with height
func GenerateSmokeGrid(n int) *loaders.GridData {
	grid := loaders.NewGridData(n, n, n)
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			h := (float64(y) + 0.5) / float64(n)
			radius := 0.15 + 0.25*h
			for x := 0; x < n; x++ {
				dx := (float64(x)+0.5)/float64(n) - 0.5
				dz := (float64(z)+0.5)/float64(n) - 0.5
				r := math.Sqrt(dx*dx+dz*dz) / radius
				if r >= 1 {
					continue
				}
				noise := medium.PerlinNoise(core.NewVec3(float64(x), float64(y), float64(z)).Multiply(6 / float64(n)))
				v := (1 - r) * (1 - 0.6*h) * (0.6 + 0.8*noise)
				grid.Set(x, y, z, max(0, min(1, v)))
			}
		}
	}
	return grid
}

// NewSmokeScene places a voxel-grid smoke plume on a ground plane under a
// directional light and a dim sky. A nil grid uses GenerateSmokeGrid.
func NewSmokeScene(grid *loaders.GridData, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	config := geometry.CameraConfig{
		Center:      core.NewVec3(0, 1.2, 4),
		LookAt:      core.NewVec3(0, 1, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 1,
		VFov:        40,
	}
	for _, o := range cameraOverrides {
		config = geometry.MergeCameraConfig(config, o)
	}

	s := New("smoke", config)
	s.SamplingConfig.SamplesPerPixel = 64
	s.IntegratorConfig.Type = "vol_path"

	if grid == nil {
		grid = GenerateSmokeGrid(32)
	}

	s.AddShapes(NewGroundQuad(core.NewVec3(0, 0, 0), 20, material.NewLambertian(core.NewVec3(0.5, 0.45, 0.4))))
	s.AddLight(lights.NewDirectionalLight(core.NewVec3(3, 2.8, 2.5), core.NewVec3(-1, -2, -0.5)))
	s.AddLight(lights.NewUniformEnvironment(core.NewVec3(0.15, 0.2, 0.3)))

	mc := medium.DefaultConfig()
	mc.SigmaA = core.NewVec3(0.5, 0.5, 0.5)
	mc.SigmaS = core.NewVec3(4, 4, 4)
	mc.MaxDensity = math.Max(grid.Max(), 1e-3)
	mc.Center = core.NewVec3(0, 1, 0)
	mc.Size = core.NewVec3(0.8, 1, 0.8)
	mc.Density = medium.DensityGrid
	mc.Grid = grid
	mc.Phase = medium.NewHenyeyGreenstein(0.6)

	smoke, err := medium.New(mc)
	if err != nil {
		return nil, fmt.Errorf("while creating smoke: %w", err)
	}
	s.AddMedium(smoke)
	return s, nil
}
