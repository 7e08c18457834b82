package light

import (
	"voxelstream.dev/internal/sim/block"
	"voxelstream.dev/internal/sim/chunk"
)

// Extended buffer spanning the center chunk plus its four edge and four
// diagonal neighbors. Faces exactly on a chunk boundary then sample the
// adjoining chunk's flood instead of a hard-coded dark value.
const (
	bx = 3 * chunk.SX
	bz = 3 * chunk.SZ

	Max = 15
)

// Levels holds the two light fields computed for one mesh build. Indexed
// in center-chunk-local coordinates with x,z in [-16, 32). Never
// persisted.
type Levels struct {
	sky []uint8
	blk []uint8
}

func idx(x, y, z int) int {
	return (x + chunk.SX) + (z+chunk.SZ)*bx + y*bx*bz
}

func inBuf(x, y, z int) bool {
	return x >= -chunk.SX && x < 2*chunk.SX &&
		z >= -chunk.SZ && z < 2*chunk.SZ &&
		y >= 0 && y < chunk.SY
}

func (l *Levels) Sky(x, y, z int) uint8 {
	if !inBuf(x, y, z) {
		return 0
	}
	return l.sky[idx(x, y, z)]
}

func (l *Levels) Block(x, y, z int) uint8 {
	if !inBuf(x, y, z) {
		return 0
	}
	return l.blk[idx(x, y, z)]
}

// Solver runs the two flood fills. One instance per worker; the buffers
// are reused across builds.
type Solver struct {
	cat *block.Catalog

	sky   []uint8
	blk   []uint8
	queue []cell
}

type cell struct {
	x, y, z int
}

func NewSolver(cat *block.Catalog) *Solver {
	return &Solver{
		cat: cat,
		sky: make([]uint8, bx*bz*chunk.SY),
		blk: make([]uint8, bx*bz*chunk.SY),
	}
}

// Compute floods sky and block light across the window and returns the
// resulting fields. The returned Levels alias the solver's buffers and
// are valid until the next Compute call.
func (s *Solver) Compute(w *chunk.Window) *Levels {
	for i := range s.sky {
		s.sky[i] = 0
		s.blk[i] = 0
	}
	s.seedSky(w)
	s.flood(w, s.sky)
	s.seedBlock(w)
	s.flood(w, s.blk)
	return &Levels{sky: s.sky, blk: s.blk}
}

// seedSky drops a vertical beam down every column: full brightness
// through transmissive cells, zero for everything below the first
// blocker.
func (s *Solver) seedSky(w *chunk.Window) {
	for z := -chunk.SZ; z < 2*chunk.SZ; z++ {
		for x := -chunk.SX; x < 2*chunk.SX; x++ {
			for y := chunk.SY - 1; y >= 0; y-- {
				if !s.cat.Transmissive(w.Get(x, y, z)) {
					break
				}
				s.sky[idx(x, y, z)] = Max
				s.queue = append(s.queue, cell{x, y, z})
			}
		}
	}
}

func (s *Solver) seedBlock(w *chunk.Window) {
	for z := -chunk.SZ; z < 2*chunk.SZ; z++ {
		for x := -chunk.SX; x < 2*chunk.SX; x++ {
			for y := 0; y < chunk.SY; y++ {
				if e := s.cat.Emission(w.Get(x, y, z)); e > 0 {
					s.blk[idx(x, y, z)] = e
					s.queue = append(s.queue, cell{x, y, z})
				}
			}
		}
	}
}

var dirs = [6]cell{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// flood is a 6-connected BFS over whichever field the seeds were written
// to, decreasing by one per transmissive hop and never entering an
// opaque voxel.
func (s *Solver) flood(w *chunk.Window, field []uint8) {
	for len(s.queue) > 0 {
		c := s.queue[0]
		s.queue = s.queue[1:]

		lv := field[idx(c.x, c.y, c.z)]
		if lv <= 1 {
			continue
		}
		for _, d := range dirs {
			nx, ny, nz := c.x+d.x, c.y+d.y, c.z+d.z
			if !inBuf(nx, ny, nz) {
				continue
			}
			if !s.cat.Transmissive(w.Get(nx, ny, nz)) {
				continue
			}
			ni := idx(nx, ny, nz)
			if field[ni] >= lv-1 {
				continue
			}
			field[ni] = lv - 1
			s.queue = append(s.queue, cell{nx, ny, nz})
		}
	}
	s.queue = s.queue[:0]
}

// Directional shading: tops are brightest, undersides darkest.
func faceBias(ny int) float32 {
	switch {
	case ny > 0:
		return 1.0
	case ny < 0:
		return 0.6
	default:
		return 0.8
	}
}

// FaceSky returns the raw sky light for a face whose outside voxel is at
// (x,y,z) and whose normal has vertical component ny, normalized to
// [0,1] and scaled by the directional bias.
func (l *Levels) FaceSky(x, y, z, ny int) float32 {
	return float32(l.Sky(x, y, z)) / Max * faceBias(ny)
}

func (l *Levels) FaceBlock(x, y, z, ny int) float32 {
	return float32(l.Block(x, y, z)) / Max * faceBias(ny)
}

// FaceSkySmooth blends the voxel with its six neighbors at 4:1 weight,
// which softens the hard steps the plain flood leaves on large walls.
func (l *Levels) FaceSkySmooth(x, y, z, ny int) float32 {
	return l.blend(l.Sky, x, y, z) / Max * faceBias(ny)
}

// FaceBlockSmooth blends like FaceSkySmooth but never lets an emitting
// voxel render dimmer than 80% of its own emission.
func (l *Levels) FaceBlockSmooth(x, y, z, ny int) float32 {
	raw := float32(l.Block(x, y, z)) / Max * faceBias(ny)
	blended := l.blend(l.Block, x, y, z) / Max * faceBias(ny)
	if floor := raw * 0.8; floor > blended {
		return floor
	}
	return blended
}

func (l *Levels) blend(field func(x, y, z int) uint8, x, y, z int) float32 {
	sum := 4 * float32(field(x, y, z))
	for _, d := range dirs {
		sum += float32(field(x+d.x, y+d.y, z+d.z))
	}
	return sum / 10
}
