package chunk

// Window is a 3x3 neighborhood of chunk snapshots centered on the chunk
// being worked on. Entries are immutable shared snapshots captured when a
// job is enqueued; a nil entry means the neighbor was not resident and
// reads as air.
type Window struct {
	// Indexed [dx+1][dz+1]; [1][1] is the center chunk.
	Chunks [3][3]*Chunk
}

func NewWindow(center *Chunk) *Window {
	var w Window
	w.Chunks[1][1] = center
	return &w
}

func (w *Window) Center() *Chunk { return w.Chunks[1][1] }

// SetNeighbor places a neighbor snapshot at offset (dx,dz), each in
// {-1,0,1}.
func (w *Window) SetNeighbor(dx, dz int, c *Chunk) {
	w.Chunks[dx+1][dz+1] = c
}

// Get reads a block at coordinates local to the center chunk's origin.
// x and z may range over [-SX, 2*SX) and [-SZ, 2*SZ); anything outside
// the window, outside the vertical range, or in an absent neighbor is
// air.
func (w *Window) Get(x, y, z int) uint16 {
	if y < 0 || y >= SY {
		return 0
	}
	dx := FloorDiv(x, SX)
	dz := FloorDiv(z, SZ)
	if dx < -1 || dx > 1 || dz < -1 || dz > 1 {
		return 0
	}
	c := w.Chunks[dx+1][dz+1]
	if c == nil {
		return 0
	}
	return c.Get(Mod(x, SX), y, Mod(z, SZ))
}
