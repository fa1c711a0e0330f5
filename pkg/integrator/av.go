package integrator

import (
	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/scene"
	"github.com/df07/go-light-transport/pkg/warp"
)

// AverageVisibility shoots one hemisphere ray of fixed length per hit and
// reports whether it escaped. Misses are fully visible.
type AverageVisibility struct {
	Length float64
}

func (a *AverageVisibility) Li(sc *scene.Scene, sampler core.Sampler, ray core.Ray) core.Vec3 {
	its, ok := sc.Intersect(ray)
	if !ok {
		return core.NewVec3(1, 1, 1)
	}
	dir := its.ToWorld(warp.SquareToUniformHemisphere(sampler.Get2D()))
	shadow := core.NewRaySegment(its.Point, dir, core.Epsilon, a.Length)
	if sc.Occluded(shadow) {
		return core.Vec3{}
	}
	return core.NewVec3(1, 1, 1)
}
