package mesh

import (
	"voxelstream.dev/internal/sim/block"
	"voxelstream.dev/internal/sim/chunk"
	"voxelstream.dev/internal/sim/light"
)

// Face order: +X, -X, +Y, -Y, +Z, -Z.
var faceDirs = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// Unit-cube corners for each face, wound counter-clockwise looking at
// the face from outside.
var faceCorners = [6][4][3]float32{
	{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}, // +X
	{{0, 0, 1}, {0, 1, 1}, {0, 1, 0}, {0, 0, 0}}, // -X
	{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}, // +Y
	{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {1, 0, 1}}, // -Y
	{{1, 0, 1}, {1, 1, 1}, {0, 1, 1}, {0, 0, 1}}, // +Z
	{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}, // -Z
}

// Mesher turns a chunk window plus computed light into a render buffer,
// one quad per exposed face. No quad merging across voxels: chunks are
// edited often and the simple remesh is the point.
type Mesher struct {
	cat *block.Catalog

	// Atlas tiles per row/column; UVs address a gridSize x gridSize grid.
	gridSize int

	// Smooth lighting averages each face with its flood neighbors.
	Smooth bool
}

func NewMesher(cat *block.Catalog, atlasGridSize int) *Mesher {
	if atlasGridSize <= 0 {
		atlasGridSize = 16
	}
	return &Mesher{cat: cat, gridSize: atlasGridSize, Smooth: true}
}

// Build meshes the window's center chunk. Neighbor snapshots drive both
// face culling and boundary light sampling; an absent neighbor reads as
// air, which exposes the border faces.
func (m *Mesher) Build(w *chunk.Window, lv *light.Levels) *Buffer {
	buf := &Buffer{}
	for y := 0; y < chunk.SY; y++ {
		for z := 0; z < chunk.SZ; z++ {
			for x := 0; x < chunk.SX; x++ {
				id := w.Center().Get(x, y, z)
				if id == 0 {
					continue
				}
				if m.cat.Plant(id) {
					m.addCross(buf, lv, x, y, z, id)
					continue
				}
				if !m.cat.Solid(id) {
					continue
				}
				for face, d := range faceDirs {
					nx, ny, nz := x+d[0], y+d[1], z+d[2]
					nid := w.Get(nx, ny, nz)
					if m.occludes(id, nid) {
						continue
					}
					m.addFace(buf, lv, x, y, z, face, id)
				}
			}
		}
	}
	return buf
}

// occludes reports whether the neighbor hides a face of the current
// block: any opaque neighbor does, and so does a neighbor of the same
// id, which suppresses interior faces between identical translucent
// blocks (water against water).
func (m *Mesher) occludes(id, neighbor uint16) bool {
	if m.cat.Opaque(neighbor) {
		return true
	}
	return neighbor == id
}

func (m *Mesher) addFace(buf *Buffer, lv *light.Levels, x, y, z, face int, id uint16) {
	d := faceDirs[face]
	sky, blk := m.faceLight(lv, x+d[0], y+d[1], z+d[2], d[1])

	for _, c := range faceCorners[face] {
		buf.Positions = append(buf.Positions,
			float32(x)+c[0], float32(y)+c[1], float32(z)+c[2])
		buf.Normals = append(buf.Normals,
			float32(d[0]), float32(d[1]), float32(d[2]))
		buf.Sky = append(buf.Sky, sky)
		buf.Block = append(buf.Block, blk)
	}
	m.appendUVs(buf, id)
	buf.appendQuadIndices()
}

// addCross emits the two inset crossed quads used for plant blocks.
func (m *Mesher) addCross(buf *Buffer, lv *light.Levels, x, y, z int, id uint16) {
	const in = 0.15
	fx, fy, fz := float32(x), float32(y), float32(z)
	sky, blk := m.faceLight(lv, x, y, z, 0)

	quads := [2][4][3]float32{
		{
			{fx + in, fy, fz + in}, {fx + in, fy + 1, fz + in},
			{fx + 1 - in, fy + 1, fz + 1 - in}, {fx + 1 - in, fy, fz + 1 - in},
		},
		{
			{fx + in, fy, fz + 1 - in}, {fx + in, fy + 1, fz + 1 - in},
			{fx + 1 - in, fy + 1, fz + in}, {fx + 1 - in, fy, fz + in},
		},
	}
	normals := [2][3]float32{{0.7071, 0, -0.7071}, {0.7071, 0, 0.7071}}

	for qi, q := range quads {
		for _, p := range q {
			buf.Positions = append(buf.Positions, p[0], p[1], p[2])
			buf.Normals = append(buf.Normals,
				normals[qi][0], normals[qi][1], normals[qi][2])
			buf.Sky = append(buf.Sky, sky)
			buf.Block = append(buf.Block, blk)
		}
		m.appendUVs(buf, id)
		buf.appendQuadIndices()
	}
}

func (m *Mesher) faceLight(lv *light.Levels, x, y, z, ny int) (sky, blk float32) {
	if m.Smooth {
		return lv.FaceSkySmooth(x, y, z, ny), lv.FaceBlockSmooth(x, y, z, ny)
	}
	return lv.FaceSky(x, y, z, ny), lv.FaceBlock(x, y, z, ny)
}

func (m *Mesher) appendUVs(buf *Buffer, id uint16) {
	tu, tv := m.cat.Tile(id)
	g := float32(m.gridSize)
	uMin, vMin := float32(tu)/g, float32(tv)/g
	uMax, vMax := float32(tu+1)/g, float32(tv+1)/g
	buf.UVs = append(buf.UVs,
		uMin, vMax,
		uMin, vMin,
		uMax, vMin,
		uMax, vMax,
	)
}
