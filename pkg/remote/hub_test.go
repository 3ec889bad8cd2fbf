package remote

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vpatch/pkg/protocol"
	"github.com/vango-dev/vpatch/pkg/vdom"
	"github.com/vango-dev/vpatch/pkg/vtest"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) *protocol.Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	f, err := protocol.DecodeFrame(msg)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	return f
}

func waitForSessions(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("sessions = %d, want %d", h.Count(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubServeWS(t *testing.T) {
	h := NewHub(modules, nil)
	if err := h.Broadcast(func() *vdom.VNode { return vdom.H("p", "count 1") }); err != nil {
		t.Fatal(err)
	}

	conn := dialHub(t, h)
	m := newMirror()

	first := readFrame(t, conn)
	if !first.Flags.Has(protocol.FlagSnapshot) {
		t.Errorf("first frame flags = %v, want snapshot", first.Flags)
	}
	m.apply(t, []*protocol.Frame{first})
	vtest.ExpectMarkup(t, m.root, "<body><p>count 1</p></body>")
	waitForSessions(t, h, 1)

	if err := h.Broadcast(func() *vdom.VNode { return vdom.H("p", "count 2") }); err != nil {
		t.Fatal(err)
	}
	m.apply(t, []*protocol.Frame{readFrame(t, conn)})
	vtest.ExpectMarkup(t, m.root, "<body><p>count 2</p></body>")

	_ = conn.Close()
	waitForSessions(t, h, 0)
}

func TestHubBroadcastInvalid(t *testing.T) {
	h := NewHub(nil, nil)
	fake := &fakeConn{}
	if _, err := h.Add(fake); err != nil {
		t.Fatal(err)
	}

	err := h.Broadcast(func() *vdom.VNode { return &vdom.VNode{Sel: ".card"} })
	if err == nil {
		t.Fatal("Broadcast accepted an invalid tree")
	}
	frames := fake.frames(t)
	if len(frames) != 1 || frames[0].Type != protocol.FrameError {
		t.Fatalf("frames = %+v, want one error frame", frames)
	}

	if err := h.Broadcast(func() *vdom.VNode { return vdom.H("p") }); err != nil {
		t.Fatal(err)
	}
	if frames := fake.frames(t); len(frames) != 1 || frames[0].Type != protocol.FrameOps {
		t.Fatalf("frames = %+v, want one ops frame", frames)
	}
}

func TestHubDropsFailedSessions(t *testing.T) {
	h := NewHub(nil, nil)
	good, bad := &fakeConn{}, &fakeConn{}
	if _, err := h.Add(good); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Add(bad); err != nil {
		t.Fatal(err)
	}
	bad.err = websocket.ErrCloseSent

	if err := h.Broadcast(func() *vdom.VNode { return vdom.H("p") }); err != nil {
		t.Fatal(err)
	}
	if h.Count() != 1 {
		t.Errorf("sessions = %d, want 1", h.Count())
	}
	if !bad.closed {
		t.Error("failed session was not closed")
	}
}
