package stream

import (
	"voxelstream.dev/internal/sim/chunk"
	"voxelstream.dev/internal/sim/light"
	"voxelstream.dev/internal/sim/mesh"
)

// workerLoop is the single background worker: one job at a time until
// the job queue is stopped and drained. Lighting and meshing state lives
// here so buffer reuse never races the main thread.
func (w *World) workerLoop(atlasGridSize int) {
	defer close(w.workerDone)

	solver := light.NewSolver(w.cat)
	mesher := mesh.NewMesher(w.cat, atlasGridSize)

	for {
		job, ok := w.jobs.WaitPop()
		if !ok {
			return
		}
		switch job.Kind {
		case jobLoadOrGenerate:
			w.results.Push(w.loadOrGenerate(job))
		case jobRemesh:
			w.results.Push(w.remesh(job, solver, mesher))
		}
	}
}

// loadOrGenerate builds a fresh chunk from disk, or from the generator
// when there is no usable save. No mesh is attached; meshing happens in
// a follow-up job once the chunk is registered in the table.
func (w *World) loadOrGenerate(job WorkerJob) WorkerResult {
	c := chunk.New(job.Coord)
	if !w.store.Load(c) {
		w.gen.Fill(c)
		w.event("generate", job.Coord, 0)
	}
	return WorkerResult{Coord: job.Coord, Chunk: c, Replaced: true}
}

func (w *World) remesh(job WorkerJob, solver *light.Solver, mesher *mesh.Mesher) WorkerResult {
	levels := solver.Compute(job.Window)
	buf := mesher.Build(job.Window, levels)
	return WorkerResult{Coord: job.Coord, Buffer: buf}
}
