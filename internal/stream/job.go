package stream

import (
	"voxelstream.dev/internal/sim/chunk"
	"voxelstream.dev/internal/sim/mesh"
)

type jobKind int

const (
	jobLoadOrGenerate jobKind = iota + 1
	jobRemesh
)

// WorkerJob is one unit of background work. The window holds immutable
// chunk snapshots captured under the table lock at enqueue time; the
// table may move on while the job is in flight, the snapshots stay
// valid.
type WorkerJob struct {
	Kind   jobKind
	Coord  chunk.Coord
	Window *chunk.Window
}

// WorkerResult is pushed by the worker and applied to the table by the
// main thread. Load results carry a replacement chunk and no mesh;
// remesh results carry a mesh only.
type WorkerResult struct {
	Coord    chunk.Coord
	Chunk    *chunk.Chunk
	Buffer   *mesh.Buffer
	Replaced bool
}

// Entry is the chunk table value: the resident chunk, its lazily created
// GPU mesh handle, and the last uploaded triangle count.
type Entry struct {
	Chunk     *chunk.Chunk
	Mesh      mesh.MeshHandle
	Triangles int
}
