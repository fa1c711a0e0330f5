package photon

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/google/go-cmp/cmp"
)

func randomMap(t *testing.T, n int, seed int64) *Map {
	t.Helper()
	random := rand.New(rand.NewSource(seed))
	m := NewMap()
	m.Reserve(n)
	for i := 0; i < n; i++ {
		p := Photon{
			Position:  core.NewVec3(random.Float64()*10, random.Float64()*2, random.Float64()*5),
			Direction: core.NewVec3(0, 1, 0),
			Power:     core.NewVec3(1, 1, 1),
		}
		if err := m.PushBack(p); err != nil {
			t.Fatalf("PushBack: %v", err)
		}
	}
	if err := m.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func bruteForce(m *Map, point core.Vec3, radius float64) []int {
	var out []int
	for i := 0; i < m.Len(); i++ {
		if m.At(i).Position.Subtract(point).LengthSquared() <= radius*radius {
			out = append(out, i)
		}
	}
	return out
}

// TestSearchMatchesBruteForce compares kd-tree queries against a linear scan
func TestSearchMatchesBruteForce(t *testing.T) {
	m := randomMap(t, 5000, 3)
	random := rand.New(rand.NewSource(9))
	for i := 0; i < 200; i++ {
		point := core.NewVec3(random.Float64()*12-1, random.Float64()*3-0.5, random.Float64()*6-0.5)
		radius := random.Float64() * 1.5
		got := m.Search(point, radius, nil)
		sort.Ints(got)
		want := bruteForce(m, point, radius)
		if diff := cmp.Diff(got, want); diff != "" {
			t.Fatalf("query %d at %v r=%v (-got +want)\n%s", i, point, radius, diff)
		}
	}
}

func TestSearchAppendsToResults(t *testing.T) {
	m := randomMap(t, 100, 5)
	results := []int{-1}
	results = m.Search(core.NewVec3(5, 1, 2.5), 100, results)
	if len(results) != 101 || results[0] != -1 {
		t.Errorf("expected the sentinel plus all 100 photons, got %d entries", len(results))
	}
}

func TestConcurrentSearch(t *testing.T) {
	m := randomMap(t, 2000, 11)
	want := len(bruteForce(m, core.NewVec3(5, 1, 2.5), 1))

	var wg sync.WaitGroup
	counts := make([]int, 8)
	for g := range counts {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			counts[g] = len(m.Search(core.NewVec3(5, 1, 2.5), 1, nil))
		}(g)
	}
	wg.Wait()
	for g, c := range counts {
		if c != want {
			t.Errorf("goroutine %d found %d photons, expected %d", g, c, want)
		}
	}
}

func TestMapLifecycle(t *testing.T) {
	m := NewMap()
	if m.Built() {
		t.Fatal("new map reports built")
	}
	if err := m.Build(); err != nil {
		t.Fatalf("Build of an empty map: %v", err)
	}
	if got := m.Search(core.Vec3{}, 1, nil); len(got) != 0 {
		t.Errorf("empty map returned %v", got)
	}
	if err := m.Build(); !errors.Is(err, ErrBuilt) {
		t.Errorf("second Build error = %v, expected ErrBuilt", err)
	}
	if err := m.PushBack(Photon{}); !errors.Is(err, ErrBuilt) {
		t.Errorf("PushBack after Build error = %v, expected ErrBuilt", err)
	}
}

func TestSearchBeforeBuildPanics(t *testing.T) {
	m := NewMap()
	if err := m.PushBack(Photon{}); err != nil {
		t.Fatal(err)
	}
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNotBuilt) {
			t.Errorf("recovered %v, expected ErrNotBuilt", r)
		}
	}()
	m.Search(core.Vec3{}, 1, nil)
}
