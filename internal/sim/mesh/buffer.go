package mesh

// Buffer is a CPU-side chunk mesh: one growing set of vertex arrays plus
// a uint32 index list, two triangles per quad. It is built on the worker
// and handed to the renderer whole, so a partially built mesh is never
// visible.
type Buffer struct {
	Positions []float32 // 3 per vertex, chunk-local
	Normals   []float32 // 3 per vertex
	UVs       []float32 // 2 per vertex, atlas coordinates
	Sky       []float32 // 1 per vertex, sky light in [0,1]
	Block     []float32 // 1 per vertex, block light in [0,1]
	Indices   []uint32
}

func (b *Buffer) VertexCount() int   { return len(b.Positions) / 3 }
func (b *Buffer) TriangleCount() int { return len(b.Indices) / 3 }

func (b *Buffer) appendQuadIndices() {
	base := uint32(b.VertexCount() - 4)
	b.Indices = append(b.Indices,
		base+0, base+1, base+2,
		base+0, base+2, base+3,
	)
}

// MeshHandle is a GPU-side mesh owned by the renderer. Upload replaces
// the handle's contents atomically from the renderer's point of view.
type MeshHandle interface {
	Upload(buf *Buffer)
	Draw()
	Free()
}

// Renderer is the external rendering backend. The streaming core only
// creates handles and uploads buffers into them; everything else about
// the GPU is opaque here.
type Renderer interface {
	NewMesh() MeshHandle
}
