package geometry

import (
	"github.com/df07/go-light-transport/pkg/core"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Shapes      []Shape // Shapes for leaf nodes (nil for internal nodes)
}

// BVH represents a Bounding Volume Hierarchy for fast ray-object intersection
type BVH struct {
	Root   *BVHNode
	Center core.Vec3 // Center of the scene bounds
	Radius float64   // Radius of the bounding sphere of the scene
}

// Leaf threshold: if we have this many or fewer shapes, store them in a leaf node
const leafThreshold = 8

// maxStackDepth bounds the traversal stack; builds stop splitting at half of it
const maxStackDepth = 64

// NewBVH constructs a BVH from a slice of shapes
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{}
	}

	// Copy so partitioning never reorders the caller's slice
	shapesCopy := make([]Shape, len(shapes))
	copy(shapesCopy, shapes)

	root := buildBVH(shapesCopy, 0)
	center, radius := root.BoundingBox.BoundingSphere()
	return &BVH{Root: root, Center: center, Radius: radius}
}

// buildBVH splits at the midpoint of the longest axis of the node bounds
func buildBVH(shapes []Shape, depth int) *BVHNode {
	boundingBox := shapes[0].BoundingBox()
	for i := 1; i < len(shapes); i++ {
		boundingBox = boundingBox.Union(shapes[i].BoundingBox())
	}

	if len(shapes) <= leafThreshold || depth >= maxStackDepth/2 {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}

	axis := boundingBox.LongestAxis()
	minVal, maxVal := boundingBox.Min.Axis(axis), boundingBox.Max.Axis(axis)
	if maxVal <= minVal {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}
	splitPos := (minVal + maxVal) * 0.5

	// Partition in place
	mid := 0
	for i, shape := range shapes {
		if shape.BoundingBox().Center().Axis(axis) < splitPos {
			shapes[i], shapes[mid] = shapes[mid], shapes[i]
			mid++
		}
	}
	if mid == 0 || mid == len(shapes) {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(shapes[:mid], depth+1),
		Right:       buildBVH(shapes[mid:], depth+1),
	}
}

// Hit finds the closest intersection within [tMin, tMax]
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (*Intersection, bool) {
	if bvh.Root == nil {
		return nil, false
	}

	var closest *Intersection
	closestSoFar := tMax

	var stack [maxStackDepth]*BVHNode
	stack[0] = bvh.Root
	top := 1
	for top > 0 {
		top--
		node := stack[top]
		if !node.BoundingBox.Hit(ray, tMin, closestSoFar) {
			continue
		}

		if node.Shapes != nil {
			for _, shape := range node.Shapes {
				if its, ok := shape.Hit(ray, tMin, closestSoFar); ok {
					closest = its
					closestSoFar = its.T
				}
			}
			continue
		}

		if top+2 > maxStackDepth {
			panic("geometry: BVH deeper than traversal stack")
		}
		stack[top] = node.Right
		stack[top+1] = node.Left
		top += 2
	}
	return closest, closest != nil
}

// AnyHit reports whether anything blocks the ray within [tMin, tMax]
func (bvh *BVH) AnyHit(ray core.Ray, tMin, tMax float64) bool {
	if bvh.Root == nil {
		return false
	}

	var stack [maxStackDepth]*BVHNode
	stack[0] = bvh.Root
	top := 1
	for top > 0 {
		top--
		node := stack[top]
		if !node.BoundingBox.Hit(ray, tMin, tMax) {
			continue
		}
		if node.Shapes != nil {
			for _, shape := range node.Shapes {
				if _, ok := shape.Hit(ray, tMin, tMax); ok {
					return true
				}
			}
			continue
		}
		if top+2 > maxStackDepth {
			panic("geometry: BVH deeper than traversal stack")
		}
		stack[top] = node.Right
		stack[top+1] = node.Left
		top += 2
	}
	return false
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}
