// Package photon stores light-carrying samples for density estimation.
package photon

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/df07/go-light-transport/pkg/core"
)

var (
	// ErrBuilt is returned when a frozen map is modified
	ErrBuilt = errors.New("photon map already built")
	// ErrNotBuilt is raised when a map is queried before Build
	ErrNotBuilt = errors.New("photon map not built")
)

// Photon is one deposit of light flux on a surface
type Photon struct {
	Position  core.Vec3
	Direction core.Vec3 // Unit vector back toward where the photon came from
	Power     core.Vec3
}

// Map is an append-only photon store that freezes into a kd-tree.
// PushBack is single-writer; after Build, Search and At are safe for concurrent use.
type Map struct {
	photons []Photon
	axes    []uint8 // Split axis per node, indexed like photons
	built   bool
}

// NewMap creates an empty photon map
func NewMap() *Map {
	return &Map{}
}

// Reserve grows capacity for n more photons
func (m *Map) Reserve(n int) {
	m.photons = slices.Grow(m.photons, n)
}

// PushBack appends a photon; it fails once the map is built
func (m *Map) PushBack(p Photon) error {
	if m.built {
		return ErrBuilt
	}
	m.photons = append(m.photons, p)
	return nil
}

// Len returns the number of stored photons
func (m *Map) Len() int { return len(m.photons) }

// Built reports whether Build has run
func (m *Map) Built() bool { return m.built }

// At returns photon i. Indices come from Search and are stable after Build.
func (m *Map) At(i int) Photon { return m.photons[i] }

type span struct{ lo, hi int }

// Build sorts photons into a balanced kd-tree stored in place. The node for
// range [lo, hi) sits at its median (lo+hi)/2 and splits on the widest axis.
func (m *Map) Build() error {
	if m.built {
		return ErrBuilt
	}
	m.axes = make([]uint8, len(m.photons))

	stack := []span{{0, len(m.photons)}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.hi-s.lo <= 0 {
			continue
		}

		nodes := m.photons[s.lo:s.hi]
		bounds := core.NewAABB(nodes[0].Position, nodes[0].Position)
		for _, p := range nodes[1:] {
			bounds = bounds.Union(core.NewAABB(p.Position, p.Position))
		}
		axis := bounds.LongestAxis()

		slices.SortFunc(nodes, func(a, b Photon) int {
			return cmp.Compare(a.Position.Axis(axis), b.Position.Axis(axis))
		})
		mid := (s.lo + s.hi) / 2
		m.axes[mid] = uint8(axis)

		stack = append(stack, span{s.lo, mid}, span{mid + 1, s.hi})
	}

	m.built = true
	return nil
}

// Search appends to results the indices of all photons within radius of point
func (m *Map) Search(point core.Vec3, radius float64, results []int) []int {
	if !m.built {
		panic(fmt.Errorf("photon: search of %d photons: %w", len(m.photons), ErrNotBuilt))
	}
	r2 := radius * radius

	var stackBuf [64]span
	stack := append(stackBuf[:0], span{0, len(m.photons)})
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.hi-s.lo <= 0 {
			continue
		}

		mid := (s.lo + s.hi) / 2
		p := m.photons[mid]
		if p.Position.Subtract(point).LengthSquared() <= r2 {
			results = append(results, mid)
		}

		axis := int(m.axes[mid])
		d := point.Axis(axis) - p.Position.Axis(axis)
		if d <= radius {
			stack = append(stack, span{s.lo, mid})
		}
		if d >= -radius {
			stack = append(stack, span{mid + 1, s.hi})
		}
	}
	return results
}
