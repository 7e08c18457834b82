package stream

import (
	"time"

	"voxelstream.dev/internal/sim/chunk"
)

// Event is one streaming lifecycle record, written to the compressed
// event log when a sink is attached. Observability only; the core never
// reads these back.
type Event struct {
	At        time.Time `json:"at"`
	Kind      string    `json:"kind"` // "load" | "generate" | "evict" | "remesh" | "discard"
	CX        int       `json:"cx"`
	CZ        int       `json:"cz"`
	Triangles int       `json:"triangles,omitempty"`
}

type EventSink interface {
	WriteEvent(Event) error
}

func (w *World) event(kind string, c chunk.Coord, triangles int) {
	if w.events == nil {
		return
	}
	// Sink failures must not disturb streaming.
	_ = w.events.WriteEvent(Event{
		At:        time.Now().UTC(),
		Kind:      kind,
		CX:        c.CX,
		CZ:        c.CZ,
		Triangles: triangles,
	})
}
