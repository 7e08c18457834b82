package stream

import (
	"log"
	"math"
	"sync"

	"voxelstream.dev/internal/persistence/chunkio"
	"voxelstream.dev/internal/sim/block"
	"voxelstream.dev/internal/sim/chunk"
	"voxelstream.dev/internal/sim/mesh"
)

// Generator is the external terrain source: a deterministic pure
// function of its configuration and the chunk coordinate.
type Generator interface {
	Fill(c *chunk.Chunk)
}

type Config struct {
	LoadRadius   int
	UnloadRadius int
}

// World is the streaming controller. It owns the chunk table and both
// pending sets, all guarded by one coarse lock that only the main thread
// takes for mutation; the worker goroutine never touches the table and
// works purely on snapshots carried inside jobs.
type World struct {
	cfg      Config
	logger   *log.Logger
	cat      *block.Catalog
	gen      Generator
	store    *chunkio.Store
	renderer mesh.Renderer
	events   EventSink

	mu            sync.Mutex
	chunks        map[chunk.Coord]*Entry
	pendingLoad   map[chunk.Coord]struct{}
	pendingRemesh map[chunk.Coord]struct{}

	jobs    *BlockingQueue[WorkerJob]
	results *BlockingQueue[WorkerResult]

	workerDone chan struct{}
	closeOnce  sync.Once
}

type Options struct {
	Config   Config
	Logger   *log.Logger
	Catalog  *block.Catalog
	Gen      Generator
	Store    *chunkio.Store
	Renderer mesh.Renderer
	Events   EventSink

	// Atlas grid for UV resolution; zero means the mesher default.
	AtlasGridSize int
}

func NewWorld(opts Options) *World {
	if opts.Config.LoadRadius <= 0 {
		opts.Config.LoadRadius = 6
	}
	if opts.Config.UnloadRadius <= opts.Config.LoadRadius {
		opts.Config.UnloadRadius = opts.Config.LoadRadius + 2
	}
	w := &World{
		cfg:           opts.Config,
		logger:        opts.Logger,
		cat:           opts.Catalog,
		gen:           opts.Gen,
		store:         opts.Store,
		renderer:      opts.Renderer,
		events:        opts.Events,
		chunks:        make(map[chunk.Coord]*Entry),
		pendingLoad:   make(map[chunk.Coord]struct{}),
		pendingRemesh: make(map[chunk.Coord]struct{}),
		jobs:          NewBlockingQueue[WorkerJob](),
		results:       NewBlockingQueue[WorkerResult](),
		workerDone:    make(chan struct{}),
	}
	go w.workerLoop(opts.AtlasGridSize)
	return w
}

// UpdateStream recomputes the wanted chunk set around the viewer and
// enqueues loads for anything missing, then evicts everything that
// drifted outside the unload radius. Call once per frame from the main
// thread.
func (w *World) UpdateStream(px, pz float64) {
	center := chunk.CoordAt(int(math.Floor(px)), int(math.Floor(pz)))

	w.mu.Lock()
	defer w.mu.Unlock()

	r := w.cfg.LoadRadius
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			c := chunk.Coord{CX: center.CX + dx, CZ: center.CZ + dz}
			if _, ok := w.chunks[c]; ok {
				continue
			}
			if _, ok := w.pendingLoad[c]; ok {
				continue
			}
			w.pendingLoad[c] = struct{}{}
			w.jobs.Push(WorkerJob{
				Kind:   jobLoadOrGenerate,
				Coord:  c,
				Window: w.windowLocked(c),
			})
		}
	}

	for c := range w.chunks {
		if chebyshev(c, center) <= w.cfg.UnloadRadius {
			continue
		}
		w.evictLocked(c)
	}
}

func chebyshev(a, b chunk.Coord) int {
	dx := a.CX - b.CX
	if dx < 0 {
		dx = -dx
	}
	dz := a.CZ - b.CZ
	if dz < 0 {
		dz = -dz
	}
	if dz > dx {
		return dz
	}
	return dx
}

// evictLocked saves the chunk and drops it from the table, then forces a
// remesh of the four edge neighbors whose border faces just became
// exposed. The save is synchronous on the main thread; a stall here is
// the accepted price for never losing a whole eviction batch.
func (w *World) evictLocked(c chunk.Coord) {
	entry := w.chunks[c]
	if entry == nil {
		return
	}
	if err := w.store.Save(entry.Chunk); err != nil {
		// Best effort: the edit is lost, streaming continues.
		w.logger.Printf("save chunk %d,%d: %v", c.CX, c.CZ, err)
	}
	if entry.Mesh != nil {
		entry.Mesh.Free()
	}
	delete(w.chunks, c)
	delete(w.pendingLoad, c)
	delete(w.pendingRemesh, c)
	w.event("evict", c, 0)

	for _, n := range edgeNeighbors(c) {
		w.enqueueRemeshLocked(n, true)
	}
}

func edgeNeighbors(c chunk.Coord) [4]chunk.Coord {
	return [4]chunk.Coord{
		{CX: c.CX + 1, CZ: c.CZ},
		{CX: c.CX - 1, CZ: c.CZ},
		{CX: c.CX, CZ: c.CZ + 1},
		{CX: c.CX, CZ: c.CZ - 1},
	}
}

// windowLocked captures the 3x3 snapshot window around a coordinate from
// whatever is currently resident.
func (w *World) windowLocked(c chunk.Coord) *chunk.Window {
	var win chunk.Window
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			n := chunk.Coord{CX: c.CX + dx, CZ: c.CZ + dz}
			if e, ok := w.chunks[n]; ok {
				win.SetNeighbor(dx, dz, e.Chunk)
			}
		}
	}
	return &win
}

// enqueueRemeshLocked queues a mesh rebuild. force bypasses the pending
// check so an already in-flight job with a stale snapshot gets
// superseded by one that sees the current data.
func (w *World) enqueueRemeshLocked(c chunk.Coord, force bool) {
	if _, ok := w.chunks[c]; !ok {
		return
	}
	if _, pending := w.pendingRemesh[c]; pending && !force {
		return
	}
	w.pendingRemesh[c] = struct{}{}
	w.jobs.Push(WorkerJob{
		Kind:   jobRemesh,
		Coord:  c,
		Window: w.windowLocked(c),
	})
}

// UploadReadyMeshes drains the result queue and applies everything to
// the table. Call once per frame from the main thread.
func (w *World) UploadReadyMeshes() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		res, ok := w.results.TryPop()
		if !ok {
			return
		}
		if res.Replaced {
			w.applyLoadLocked(res)
		} else {
			w.applyRemeshLocked(res)
		}
	}
}

func (w *World) applyLoadLocked(res WorkerResult) {
	// A result for a coordinate we stopped tracking raced a shrinking
	// radius; drop it.
	if _, pending := w.pendingLoad[res.Coord]; !pending {
		w.event("discard", res.Coord, 0)
		return
	}
	delete(w.pendingLoad, res.Coord)
	w.chunks[res.Coord] = &Entry{Chunk: res.Chunk}
	w.event("load", res.Coord, 0)

	// Meshing is deferred to a second job so neighbor-aware culling sees
	// this chunk already registered.
	w.enqueueRemeshLocked(res.Coord, true)
	for _, n := range edgeNeighbors(res.Coord) {
		w.enqueueRemeshLocked(n, true)
	}
}

func (w *World) applyRemeshLocked(res WorkerResult) {
	delete(w.pendingRemesh, res.Coord)
	entry, ok := w.chunks[res.Coord]
	if !ok {
		w.event("discard", res.Coord, 0)
		return
	}
	if entry.Mesh == nil {
		entry.Mesh = w.renderer.NewMesh()
	}
	entry.Mesh.Upload(res.Buffer)
	entry.Triangles = res.Buffer.TriangleCount()
	w.event("remesh", res.Coord, entry.Triangles)
}

// SetBlock writes one block in world coordinates. The owning chunk is
// queued for remesh, and so is any edge neighbor whose shared boundary
// plane was touched.
func (w *World) SetBlock(wx, wy, wz int, id uint16) {
	c := chunk.CoordAt(wx, wz)
	lx, lz := chunk.Mod(wx, chunk.SX), chunk.Mod(wz, chunk.SZ)

	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.chunks[c]
	if !ok {
		return
	}
	entry.Chunk.Set(lx, wy, lz, id)
	w.enqueueRemeshLocked(c, true)

	if lx == 0 {
		w.enqueueRemeshLocked(chunk.Coord{CX: c.CX - 1, CZ: c.CZ}, true)
	}
	if lx == chunk.SX-1 {
		w.enqueueRemeshLocked(chunk.Coord{CX: c.CX + 1, CZ: c.CZ}, true)
	}
	if lz == 0 {
		w.enqueueRemeshLocked(chunk.Coord{CX: c.CX, CZ: c.CZ - 1}, true)
	}
	if lz == chunk.SZ-1 {
		w.enqueueRemeshLocked(chunk.Coord{CX: c.CX, CZ: c.CZ + 1}, true)
	}
}

// GetBlock returns the block at world coordinates, air for anything not
// resident. Safe to call from physics/raycast consumers; it takes the
// same table lock as everything else.
func (w *World) GetBlock(wx, wy, wz int) uint16 {
	c := chunk.CoordAt(wx, wz)

	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.chunks[c]
	if !ok {
		return 0
	}
	return entry.Chunk.Get(chunk.Mod(wx, chunk.SX), wy, chunk.Mod(wz, chunk.SZ))
}

func (w *World) IsSolidBlock(wx, wy, wz int) bool {
	return w.cat.Solid(w.GetBlock(wx, wy, wz))
}

func (w *World) IsTargetBlock(wx, wy, wz int) bool {
	return w.cat.Target(w.GetBlock(wx, wy, wz))
}

// Stats is the read-only counter snapshot consumed by the debug HUD and
// the websocket feed.
type Stats struct {
	Resident      int `json:"resident"`
	Meshed        int `json:"meshed"`
	PendingLoad   int `json:"pending_load"`
	PendingRemesh int `json:"pending_remesh"`
	Triangles     int `json:"triangles"`
	QueuedJobs    int `json:"queued_jobs"`
}

func (w *World) DebugStats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Stats{
		Resident:      len(w.chunks),
		PendingLoad:   len(w.pendingLoad),
		PendingRemesh: len(w.pendingRemesh),
		QueuedJobs:    w.jobs.Len(),
	}
	for _, e := range w.chunks {
		if e.Mesh != nil {
			s.Meshed++
			s.Triangles += e.Triangles
		}
	}
	return s
}

// Close is the two-phase shutdown: stop both queues, join the worker,
// then flush every still-resident chunk to disk.
func (w *World) Close() {
	w.closeOnce.Do(func() {
		w.jobs.Stop()
		w.results.Stop()
		<-w.workerDone

		w.mu.Lock()
		defer w.mu.Unlock()
		for c, entry := range w.chunks {
			if err := w.store.Save(entry.Chunk); err != nil {
				w.logger.Printf("final save chunk %d,%d: %v", c.CX, c.CZ, err)
			}
		}
	})
}
