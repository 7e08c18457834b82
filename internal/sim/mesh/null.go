package mesh

import "sync/atomic"

// NullRenderer satisfies Renderer without a GPU. Used by the headless
// daemon and by tests that assert on what was uploaded.
type NullRenderer struct {
	Uploads atomic.Int64
}

func (r *NullRenderer) NewMesh() MeshHandle {
	return &nullMesh{r: r}
}

type nullMesh struct {
	r    *NullRenderer
	Last *Buffer
}

func (m *nullMesh) Upload(buf *Buffer) {
	m.Last = buf
	m.r.Uploads.Add(1)
}

func (m *nullMesh) Draw() {}
func (m *nullMesh) Free() {}
