package scene

import (
	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/geometry"
	"github.com/df07/go-light-transport/pkg/material"
)

// cornellBoxSize is the edge length of the standard Cornell box
const cornellBoxSize = 555.0

func cornellCamera(overrides ...geometry.CameraConfig) geometry.CameraConfig {
	config := geometry.CameraConfig{
		Center:      core.NewVec3(278, 278, -800), // Position camera outside the box looking in
		LookAt:      core.NewVec3(278, 278, 0),    // Look at the center of the box
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 1.0,
		VFov:        40.0,
	}
	for _, o := range overrides {
		config = geometry.MergeCameraConfig(config, o)
	}
	return config
}

// addCornellWalls adds the five walls and the ceiling light. Every wall faces into the box.
func addCornellWalls(s *Scene) {
	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))

	size := cornellBoxSize
	x := core.NewVec3(size, 0, 0)
	y := core.NewVec3(0, size, 0)
	z := core.NewVec3(0, 0, size)

	floor := geometry.NewQuad(core.NewVec3(0, 0, 0), z, x, white)
	ceiling := geometry.NewQuad(core.NewVec3(0, size, 0), x, z, white)
	backWall := geometry.NewQuad(core.NewVec3(0, 0, size), y, x, white)
	leftWall := geometry.NewQuad(core.NewVec3(0, 0, 0), y, z, red)
	rightWall := geometry.NewQuad(core.NewVec3(size, 0, 0), z, y, green)
	s.AddShapes(floor, ceiling, backWall, leftWall, rightWall)

	// Ceiling light, slightly below the ceiling and facing down
	lightSize := 130.0
	lightOffset := (size - lightSize) / 2.0
	s.AddQuadLight(
		core.NewVec3(lightOffset, size-1, lightOffset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
		core.NewVec3(15.0, 15.0, 15.0),
	)
}

// NewCornellScene creates a classic Cornell box with a mirror sphere and a glass sphere
func NewCornellScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	s := New("cornell", cornellCamera(cameraOverrides...))
	s.SamplingConfig.SamplesPerPixel = 128
	s.IntegratorConfig.Type = "path_mis"

	addCornellWalls(s)

	// Left sphere (smaller, mirror)
	leftSphere := geometry.NewSphere(core.NewVec3(185, 82.5, 169), 82.5, material.NewMirror(core.NewVec3(0.9, 0.9, 0.9)))
	// Right sphere (larger, glass)
	rightSphere := geometry.NewSphere(core.NewVec3(370, 90, 351), 90, material.NewDielectric(1.5))
	s.AddShapes(leftSphere, rightSphere)

	return s
}
