package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/okvist/printlink/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Interval between simulated status updates
	statusPeriod = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// statusEvent is one simulated job status update
type statusEvent struct {
	State    string  `json:"state"`
	Progress float64 `json:"progress"`
	TempBed  float64 `json:"temp_bed"`
	TempNoz  float64 `json:"temp_nozzle"`
}

// eventHub fans simulated status updates out to connected WebSocket
// clients
type eventHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	done    chan struct{}
	once    sync.Once
}

// newEventHub creates an empty hub
func newEventHub() *eventHub {
	return &eventHub{
		clients: make(map[*websocket.Conn]struct{}),
		done:    make(chan struct{}),
	}
}

// handleEvents upgrades the request and streams status updates until the
// client disconnects
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	logging.Info("Event stream connected", zap.String("remote_addr", r.RemoteAddr))
	s.events.add(conn)

	// Drain control frames so close handshakes are processed
	go func() {
		defer s.events.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logging.Info("Event stream disconnected",
					zap.String("remote_addr", r.RemoteAddr),
				)
				return
			}
		}
	}()
}

// add registers a client connection
func (h *eventHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

// remove unregisters and closes a client connection
func (h *eventHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		_ = conn.Close()
	}
}

// run broadcasts simulated status updates until the hub is closed
func (h *eventHub) run() {
	ticker := time.NewTicker(statusPeriod)
	defer ticker.Stop()

	progress := 0.0
	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			progress += 0.5
			if progress > 100 {
				progress = 0
			}
			h.broadcast(statusEvent{
				State:    "PRINTING",
				Progress: progress,
				TempBed:  60.0,
				TempNoz:  215.0,
			})
		}
	}
}

// broadcast sends an event to every connected client, dropping clients
// whose writes fail
func (h *eventHub) broadcast(event statusEvent) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			h.remove(conn)
		}
	}
}

// close disconnects all clients and stops the broadcast loop
func (h *eventHub) close() {
	h.once.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait),
		)
		_ = conn.Close()
		delete(h.clients, conn)
	}
}
