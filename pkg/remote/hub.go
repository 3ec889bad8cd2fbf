package remote

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vpatch/internal/errors"
	"github.com/vango-dev/vpatch/pkg/protocol"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

// Hub tracks the sessions of connected clients and renders the same
// document into each of them.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	build    func() *vdom.VNode

	// Serializes broadcasts so every session sees documents in order.
	broadcastMu sync.Mutex

	modules  ModuleFactory
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates a hub whose sessions use modules. A nil logger means
// slog.Default().
func NewHub(modules ModuleFactory, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		sessions: make(map[string]*Session),
		modules:  modules,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: logger,
	}
}

// SetCheckOrigin overrides the upgrader's origin check. By default only
// same-origin requests are upgraded.
func (h *Hub) SetCheckOrigin(check func(r *http.Request) bool) {
	h.upgrader.CheckOrigin = check
}

// Count returns the number of registered sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Add registers a session writing to conn and renders the current
// document into it, if any. A session whose first render fails is not
// registered.
func (h *Hub) Add(conn Conn) (*Session, error) {
	s := NewSession(conn, h.modules, h.logger)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.build != nil {
		if err := s.Render(h.build()); err != nil {
			return nil, err
		}
	}
	h.sessions[s.ID] = s

	h.logger.Info("session created",
		"session_id", s.ID,
		"active_sessions", len(h.sessions))
	return s, nil
}

// Remove unregisters and closes the session with the given ID.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Broadcast makes build the current document and renders a fresh tree
// from it into every session. Trees hold host handles, so build is called
// once per session.
//
// A document that fails validation is not kept: every session receives
// a FrameError and the validation error is returned. Sessions whose
// connection fails are removed.
func (h *Hub) Broadcast(build func() *vdom.VNode) error {
	h.broadcastMu.Lock()
	defer h.broadcastMu.Unlock()

	if err := vdom.Validate(build()); err != nil {
		h.logger.Warn("broadcast rejected", "error", err)
		h.sendError(err)
		return err
	}

	h.mu.Lock()
	h.build = build
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		if err := s.Render(build()); err != nil {
			h.logger.Warn("session render failed",
				"session_id", s.ID,
				"error", err)
			h.Remove(s.ID)
		}
	}

	h.logger.Debug("broadcast", "sessions", len(sessions))
	return nil
}

func (h *Hub) sendError(err error) {
	em := &protocol.ErrorMessage{Code: errors.Code(err), Message: err.Error()}
	frame := protocol.NewFrame(protocol.FrameError, 0, protocol.EncodeErrorMessage(em)).Encode()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.sessions {
		s.mu.Lock()
		if !s.closed {
			_ = s.conn.WriteMessage(websocket.BinaryMessage, frame)
		}
		s.mu.Unlock()
	}
}

// ServeWS upgrades the request to a websocket, registers a session and
// blocks until the client goes away. Client messages are ignored.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	s, err := h.Add(conn)
	if err != nil {
		h.logger.Error("initial render failed", "error", err)
		_ = conn.Close()
		return
	}
	defer h.Remove(s.ID)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				h.logger.Warn("read error", "session_id", s.ID, "error", err)
			}
			return
		}
	}
}
