package material

import (
	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/loaders"
)

// NormalMap perturbs shading normals from an RGB tangent-space map
type NormalMap struct {
	Width  int
	Height int
	Pixels []core.Vec3
	Scale  core.Vec2
	Shift  core.Vec2
}

// NewNormalMap wraps decoded image data; pixels must not be linearized
func NewNormalMap(img *loaders.ImageData, scale, shift core.Vec2) *NormalMap {
	return &NormalMap{Width: img.Width, Height: img.Height, Pixels: img.Pixels, Scale: scale, Shift: shift}
}

// Normal returns the unit tangent-space normal stored at uv
func (n *NormalMap) Normal(uv core.Vec2) core.Vec3 {
	if n.Width == 0 || n.Height == 0 {
		return core.NewVec3(0, 0, 1)
	}
	c := n.Pixels[texelIndex(uv, n.Scale, n.Shift, n.Width, n.Height)]
	local := c.Multiply(2).Subtract(core.NewVec3(1, 1, 1)).Normalize()
	if local.IsZero() {
		return core.NewVec3(0, 0, 1)
	}
	return local
}

// Apply returns the shading frame for the given geometric frame. The tangent
// frame of the map is (geo.S, geo.T, geo.N).
func (n *NormalMap) Apply(uv core.Vec2, geo core.Frame) core.Frame {
	shadingNormal := geo.ToWorld(n.Normal(uv)).Normalize()
	return core.NewFrameFromTangent(shadingNormal, geo.S)
}
