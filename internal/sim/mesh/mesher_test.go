package mesh

import (
	"testing"

	"voxelstream.dev/internal/sim/block"
	"voxelstream.dev/internal/sim/chunk"
	"voxelstream.dev/internal/sim/light"
)

func buildFor(t *testing.T, w *chunk.Window) *Buffer {
	t.Helper()
	cat := block.Defaults()
	lv := light.NewSolver(cat).Compute(w)
	return NewMesher(cat, 16).Build(w, lv)
}

func fillAll(c *chunk.Chunk, id uint16) {
	for i := range c.Blocks {
		c.Blocks[i] = id
	}
}

func quads(b *Buffer) int { return len(b.Indices) / 6 }

func TestBuild_FlatFloorQuadCounts(t *testing.T) {
	cat := block.Defaults()
	grass := cat.MustID("GRASS")

	c := chunk.New(chunk.Coord{})
	for z := 0; z < chunk.SZ; z++ {
		for x := 0; x < chunk.SX; x++ {
			c.Set(x, 5, z, grass)
		}
	}

	buf := buildFor(t, chunk.NewWindow(c))

	// Isolated single-layer floor: full top and bottom sheets plus every
	// border side face.
	wantQuads := chunk.SX*chunk.SZ + // top
		chunk.SX*chunk.SZ + // bottom
		2*chunk.SX + 2*chunk.SZ // sides
	if got := quads(buf); got != wantQuads {
		t.Fatalf("quads: got %d want %d", got, wantQuads)
	}
	if got := buf.TriangleCount(); got != wantQuads*2 {
		t.Fatalf("triangles: got %d want %d", got, wantQuads*2)
	}
	if got := buf.VertexCount(); got != wantQuads*4 {
		t.Fatalf("vertices: got %d want %d", got, wantQuads*4)
	}
}

func TestBuild_BoundaryCulling(t *testing.T) {
	cat := block.Defaults()
	stone := cat.MustID("STONE")

	center := chunk.New(chunk.Coord{})
	fillAll(center, stone)
	neighbor := chunk.New(chunk.Coord{CX: 1})
	fillAll(neighbor, stone)

	// No neighbors: every outer face of the solid block is exposed.
	solo := buildFor(t, chunk.NewWindow(center))
	wantSolo := 2*chunk.SX*chunk.SZ + // top+bottom
		2*chunk.SX*chunk.SY + 2*chunk.SZ*chunk.SY // four walls
	if got := quads(solo); got != wantSolo {
		t.Fatalf("isolated quads: got %d want %d", got, wantSolo)
	}

	// Same-id opaque neighbor supplied: the shared plane disappears.
	w := chunk.NewWindow(center)
	w.SetNeighbor(1, 0, neighbor)
	joined := buildFor(t, w)
	wantJoined := wantSolo - chunk.SZ*chunk.SY
	if got := quads(joined); got != wantJoined {
		t.Fatalf("joined quads: got %d want %d", got, wantJoined)
	}
}

func TestBuild_SameIDTranslucentSuppressed(t *testing.T) {
	cat := block.Defaults()
	water := cat.MustID("WATER")

	c := chunk.New(chunk.Coord{})
	c.Set(5, 10, 5, water)
	c.Set(6, 10, 5, water)

	buf := buildFor(t, chunk.NewWindow(c))

	// Two cubes minus the two internal faces between them.
	if got := quads(buf); got != 10 {
		t.Fatalf("water pair quads: got %d want 10", got)
	}
}

func TestBuild_TranslucentAgainstAirKeepsFaces(t *testing.T) {
	cat := block.Defaults()
	water := cat.MustID("WATER")
	glass := cat.MustID("GLASS")

	c := chunk.New(chunk.Coord{})
	c.Set(5, 10, 5, water)
	c.Set(6, 10, 5, glass)

	buf := buildFor(t, chunk.NewWindow(c))

	// Different translucent ids do not occlude each other.
	if got := quads(buf); got != 12 {
		t.Fatalf("water+glass quads: got %d want 12", got)
	}
}

func TestBuild_PlantCross(t *testing.T) {
	cat := block.Defaults()
	plant := cat.MustID("TALL_GRASS")

	c := chunk.New(chunk.Coord{})
	c.Set(8, 20, 8, plant)

	buf := buildFor(t, chunk.NewWindow(c))

	if got := quads(buf); got != 2 {
		t.Fatalf("plant quads: got %d want 2", got)
	}
	// Inset: no vertex touches the cell walls.
	for i := 0; i < len(buf.Positions); i += 3 {
		x := buf.Positions[i] - 8
		z := buf.Positions[i+2] - 8
		if x <= 0 || x >= 1 || z <= 0 || z >= 1 {
			t.Fatalf("vertex %d not inset: x=%v z=%v", i/3, x, z)
		}
	}
}

func TestBuild_FaceLightAttributes(t *testing.T) {
	cat := block.Defaults()
	grass := cat.MustID("GRASS")

	c := chunk.New(chunk.Coord{})
	c.Set(8, 5, 8, grass)

	w := chunk.NewWindow(c)
	lv := light.NewSolver(cat).Compute(w)
	m := NewMesher(cat, 16)
	m.Smooth = false // raw queries make the face values exact
	buf := m.Build(w, lv)

	if len(buf.Sky) != buf.VertexCount() || len(buf.Block) != buf.VertexCount() {
		t.Fatalf("light attribute length mismatch: sky=%d block=%d vertices=%d",
			len(buf.Sky), len(buf.Block), buf.VertexCount())
	}
	// The open-sky top face must be brighter than any bottom face.
	var maxSky, minSky float32 = 0, 2
	for _, v := range buf.Sky {
		if v > maxSky {
			maxSky = v
		}
		if v < minSky {
			minSky = v
		}
	}
	if maxSky != 1.0 {
		t.Fatalf("top face sky light: got %v want 1.0", maxSky)
	}
	if minSky >= maxSky {
		t.Fatalf("no directional variation: min=%v max=%v", minSky, maxSky)
	}
}
