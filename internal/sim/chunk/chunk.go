package chunk

// Chunk dimensions. The vertical extent is fixed; the world streams an
// unbounded column grid of these around the viewer.
const (
	SX = 16
	SY = 128
	SZ = 16

	Volume = SX * SY * SZ
)

// Coord is the (x,z) grid coordinate of a chunk column.
type Coord struct {
	CX int
	CZ int
}

// Chunk is a fixed 16x128x16 voxel grid stored as a flat slice,
// x fastest, then z, then y.
type Chunk struct {
	Coord  Coord
	Blocks []uint16

	dirty bool
}

func New(c Coord) *Chunk {
	return &Chunk{
		Coord:  c,
		Blocks: make([]uint16, Volume),
	}
}

func index(x, y, z int) int {
	return x + z*SX + y*SX*SZ
}

// Get returns the block at local coordinates. Out-of-range reads
// return air (0).
func (c *Chunk) Get(x, y, z int) uint16 {
	if x < 0 || x >= SX || y < 0 || y >= SY || z < 0 || z >= SZ {
		return 0
	}
	return c.Blocks[index(x, y, z)]
}

// Set writes the block at local coordinates and marks the chunk dirty
// when the value actually changes. Out-of-range writes are ignored.
func (c *Chunk) Set(x, y, z int, b uint16) {
	if x < 0 || x >= SX || y < 0 || y >= SY || z < 0 || z >= SZ {
		return
	}
	i := index(x, y, z)
	if c.Blocks[i] == b {
		return
	}
	c.Blocks[i] = b
	c.dirty = true
}

func (c *Chunk) Dirty() bool { return c.dirty }
func (c *Chunk) MarkDirty()  { c.dirty = true }
func (c *Chunk) ClearDirty() { c.dirty = false }

// FloorDiv divides rounding toward negative infinity. b > 0.
func FloorDiv(a, b int) int {
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

// Mod returns the non-negative remainder. b > 0.
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// CoordAt returns the chunk coordinate containing the world position.
func CoordAt(wx, wz int) Coord {
	return Coord{CX: FloorDiv(wx, SX), CZ: FloorDiv(wz, SZ)}
}
