package remote

import (
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vpatch/internal/errors"
	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/protocol"
	"github.com/vango-dev/vpatch/pkg/reconcile"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

// ErrSessionClosed is returned by Render after Close.
var ErrSessionClosed = stderrors.New("remote: session closed")

// Conn is the write side of a websocket connection. *websocket.Conn
// satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

// ModuleFactory builds the modules of one session's Patcher. Modules that
// write attributes receive the session's Recorder.
type ModuleFactory func(api host.Attributer) []reconcile.Module

// Session reconciles trees for one client and ships the resulting ops.
type Session struct {
	// ID is a random identifier used in logs.
	ID string

	mu      sync.Mutex
	conn    Conn
	rec     *Recorder
	patcher *reconcile.Patcher
	tree    *vdom.VNode
	seq     uint64
	closed  bool
	logger  *slog.Logger

	frames    atomic.Int64
	bytesSent atomic.Int64
}

// NewSession creates a session writing to conn. A nil modules means no
// modules; a nil logger means slog.Default().
func NewSession(conn Conn, modules ModuleFactory, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := generateSessionID()
	logger = logger.With("session_id", id)

	rec := NewMemRecorder("body")
	var mods []reconcile.Module
	if modules != nil {
		mods = modules(rec)
	}
	return &Session{
		ID:   id,
		conn: conn,
		rec:  rec,
		patcher: reconcile.New(mods,
			reconcile.WithAdapter(rec),
			reconcile.WithLogger(logger),
			reconcile.WithValidation(true),
		),
		logger: logger,
	}
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// Recorder returns the session's recording adapter.
func (s *Session) Recorder() *Recorder {
	return s.rec
}

// Tree returns the current baseline, or nil before the first Render.
func (s *Session) Tree() *vdom.VNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Seq returns the sequence number of the last batch sent.
func (s *Session) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Render reconciles next against the session's baseline and sends the
// recorded ops. The first Render mounts next under the root and its batch
// carries FlagSnapshot.
//
// A tree rejected by validation leaves the baseline untouched; the client
// receives a FrameError and the validation error is returned. Write
// failures are returned as E062.
func (s *Session) Render(next *vdom.VNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	var (
		tree  *vdom.VNode
		err   error
		flags protocol.FrameFlags
	)
	if s.tree == nil {
		flags = protocol.FlagSnapshot
		tree, err = s.patcher.Mount(s.rec.Root(), next)
	} else {
		tree, err = s.patcher.Patch(s.tree, next)
	}
	if err != nil {
		s.logger.Warn("render rejected", "error", err)
		em := &protocol.ErrorMessage{Code: errors.Code(err), Message: err.Error()}
		if werr := s.write(protocol.NewFrame(protocol.FrameError, 0, protocol.EncodeErrorMessage(em))); werr != nil {
			return stderrors.Join(err, werr)
		}
		return err
	}
	s.tree = tree

	s.seq++
	ops := s.rec.Flush()
	frames, err := protocol.OpsFrames(s.seq, ops, flags)
	if err != nil {
		return fmt.Errorf("encode ops: %w", err)
	}
	for _, f := range frames {
		if err := s.write(f); err != nil {
			return err
		}
	}

	stats := s.patcher.Stats()
	s.logger.Debug("batch sent",
		"seq", s.seq,
		"ops", len(ops),
		"frames", len(frames),
		"created", stats.Created,
		"removed", stats.Removed,
		"moved", stats.Moved)
	return nil
}

// write must be called with mu held.
func (s *Session) write(f *protocol.Frame) error {
	data := f.Encode()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return errors.New("E062").Wrap(err)
	}
	s.frames.Add(1)
	s.bytesSent.Add(int64(len(data)))
	return nil
}

// Close marks the session closed and closes its connection. It is safe
// to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	if ws, ok := s.conn.(*websocket.Conn); ok {
		_ = ws.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
	}
	if c, ok := s.conn.(io.Closer); ok {
		_ = c.Close()
	}

	s.logger.Info("session closed",
		"batches", s.seq,
		"frames", s.frames.Load(),
		"bytes_sent", s.bytesSent.Load())
}
