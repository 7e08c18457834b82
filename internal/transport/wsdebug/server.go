package wsdebug

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"voxelstream.dev/internal/stream"
)

// StatsMessage is the wire form of one stats push. The schema lives in
// schemas/stats.schema.json.
type StatsMessage struct {
	Type string       `json:"type"` // always "STATS"
	At   string       `json:"at"`
	Body stream.Stats `json:"body"`
}

// Server pushes DebugStats to every connected observer at a fixed
// interval. Read-only: no message from a client changes world state.
type Server struct {
	world    *stream.World
	log      *log.Logger
	interval time.Duration

	upgrader websocket.Upgrader
}

func NewServer(w *stream.World, logger *log.Logger, interval time.Duration) *Server {
	if interval <= 0 {
		interval = time.Second
	}
	return &Server{
		world:    w,
		log:      logger,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		s.log.Printf("stats observer connected: %s", conn.RemoteAddr())

		// Discard inbound frames so pings and close handshakes work.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for range ticker.C {
			msg := StatsMessage{
				Type: "STATS",
				At:   time.Now().UTC().Format(time.RFC3339Nano),
				Body: s.world.DebugStats(),
			}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				s.log.Printf("stats observer dropped: %s", conn.RemoteAddr())
				return
			}
		}
	}
}
