package renderer

import (
	"image"
	"sync"

	"github.com/df07/go-light-transport/pkg/core"
	"github.com/df07/go-light-transport/pkg/integrator"
	"github.com/df07/go-light-transport/pkg/scene"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	Block  *ImageBlock     // Samples of the current round, owned by one worker at a time
	Rounds int             // Number of rounds completed for this tile
}

// NewTile creates a new tile with the specified bounds
func NewTile(id int, bounds image.Rectangle, filter ReconstructionFilter) *Tile {
	return &Tile{ID: id, Bounds: bounds, Block: NewImageBlock(bounds, filter)}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int, filter ReconstructionFilter) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), filter))
			tileID++
		}
	}

	return tiles
}

// samplerSlot holds the sampler of one tile, created on first use
type samplerSlot struct {
	once    sync.Once
	sampler core.Sampler
}

// samplerTable gives every tile its own sampler so a tile draws the same
// sample sequence whichever worker renders it
type samplerTable struct {
	mu    sync.Mutex
	slots []*samplerSlot
	base  core.Sampler
	seed  int64
}

func newSamplerTable(base core.Sampler, seed int64) *samplerTable {
	return &samplerTable{base: base, seed: seed}
}

// get returns the sampler for tile id, growing the table as needed
func (t *samplerTable) get(id int) core.Sampler {
	t.mu.Lock()
	for len(t.slots) <= id {
		t.slots = append(t.slots, &samplerSlot{})
	}
	slot := t.slots[id]
	t.mu.Unlock()

	slot.once.Do(func() {
		t.mu.Lock()
		s := t.base.Clone()
		t.mu.Unlock()
		s.Prepare(t.seed + int64(id))
		slot.sampler = s
	})
	return slot.sampler
}

// TileRenderer takes one sample per pixel of a tile using an integrator
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(sc *scene.Scene, integ integrator.Integrator) *TileRenderer {
	return &TileRenderer{scene: sc, integrator: integ}
}

// RenderTile clears the tile's block and splats one camera sample per pixel into it
func (tr *TileRenderer) RenderTile(tile *Tile, sampler core.Sampler) int {
	camera := tr.scene.Camera
	block := tile.Block
	block.Clear()

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			pixelSample := sampler.Get2D()
			pixelSample.X += float64(x)
			pixelSample.Y += float64(y)
			ray, weight := camera.SampleRay(pixelSample, sampler.Get2D())
			value := weight.MultiplyVec(tr.integrator.Li(tr.scene, sampler, ray))
			block.Put(pixelSample, value)
		}
	}
	return tile.Bounds.Dx() * tile.Bounds.Dy()
}
