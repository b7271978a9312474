package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-relay/internal/command"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/logging"
)

// EventCommandResult is the only event on the result stream.
const EventCommandResult = "command.result"

// resultBufferSize is how many undelivered results a client may lag by
// before further results are dropped for it.
const resultBufferSize = 64

// ResultEvent is one frame on the result stream.
type ResultEvent struct {
	Event  string         `json:"event"`
	Result command.Result `json:"result"`
}

// Hub fans command results out to WebSocket clients. The stream is one
// way: frames sent by clients are read and discarded.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	// mu guards streams and every close of a stream's out channel, so
	// Broadcast never sends on a closed channel.
	mu      sync.RWMutex
	streams map[*resultStream]struct{}
	closed  bool
}

// resultStream is one connected client.
type resultStream struct {
	conn *websocket.Conn
	out  chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 1024,
	// Access is gated by the API key, not the origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewHub creates a result hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		streams: make(map[*resultStream]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.streams {
		delete(h.streams, s)
		close(s.out)
	}
}

// Broadcast sends r to every client. A client whose buffer is full
// misses the result.
func (h *Hub) Broadcast(r command.Result) {
	data, err := json.Marshal(ResultEvent{Event: EventCommandResult, Result: r})
	if err != nil {
		h.logger.Error("failed to encode result event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.streams {
		select {
		case s.out <- data:
		default:
			h.logger.Warn("websocket client lagging, result dropped", "command_id", r.ID)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams)
}

// add registers s. It reports false once the hub has shut down.
func (h *Hub) add(s *resultStream) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.streams[s] = struct{}{}
	return true
}

// remove unregisters s and closes its out channel if Run has not
// already done so.
func (h *Hub) remove(s *resultStream) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.streams[s]; ok {
		delete(h.streams, s)
		close(s.out)
	}
}

// handleWebSocket upgrades the connection and streams command results
// to it. apiKeyMiddleware has already checked the key.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	stream := &resultStream{conn: conn, out: make(chan []byte, resultBufferSize)}
	if !s.hub.add(stream) {
		conn.Close()
		return
	}
	s.logger.Debug("websocket client connected", "clients", s.hub.ClientCount())

	go s.hub.write(stream)
	go s.hub.drain(stream)
}

// drain reads until the client goes away. Reading is what processes
// pongs and the close handshake; frame contents are ignored.
func (h *Hub) drain(s *resultStream) {
	defer func() {
		h.remove(s)
		s.conn.Close()
		h.logger.Debug("websocket client disconnected", "clients", h.ClientCount())
	}()

	idle := time.Duration(h.cfg.PingInterval+h.cfg.PongTimeout) * time.Second
	s.conn.SetReadLimit(int64(h.cfg.MaxMessageSize))
	//nolint:errcheck // A failed deadline surfaces as a read error
	s.conn.SetReadDeadline(time.Now().Add(idle))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(idle))
	})

	for {
		if _, _, err := s.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		//nolint:errcheck // A failed deadline surfaces as a read error
		s.conn.SetReadDeadline(time.Now().Add(idle))
	}
}

// write sends queued results and keepalive pings until out is closed or
// a write fails.
func (h *Hub) write(s *resultStream) {
	ping := time.NewTicker(time.Duration(h.cfg.PingInterval) * time.Second)
	defer func() {
		ping.Stop()
		s.conn.Close()
	}()

	wait := time.Duration(h.cfg.PongTimeout) * time.Second
	for {
		select {
		case data, ok := <-s.out:
			//nolint:errcheck // A failed deadline surfaces as a write error
			s.conn.SetWriteDeadline(time.Now().Add(wait))
			if !ok {
				//nolint:errcheck // Peer may already be gone
				s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			//nolint:errcheck // A failed deadline surfaces as a write error
			s.conn.SetWriteDeadline(time.Now().Add(wait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
