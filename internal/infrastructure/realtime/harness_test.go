package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsHarness hands out real websocket pairs backed by an httptest server, so
// registry and relay tests exercise the same transport production uses.
type wsHarness struct {
	srv      *httptest.Server
	accepted chan *websocket.Conn
}

func newWSHarness(t *testing.T) *wsHarness {
	t.Helper()
	h := &wsHarness{accepted: make(chan *websocket.Conn, 16)}
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.accepted <- ws
	}))
	t.Cleanup(h.srv.Close)
	return h
}

// pair dials the harness and returns the client side plus the server-side
// socket the registry will own.
func (h *wsHarness) pair(t *testing.T) (client, server *websocket.Conn) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	select {
	case server = <-h.accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("server side of the socket never arrived")
	}
	return client, server
}

// bind creates a registry connection for userID over a fresh socket pair.
func (h *wsHarness) bind(t *testing.T, reg *Registry, userID string) (*Connection, *websocket.Conn) {
	t.Helper()
	client, server := h.pair(t)
	conn := NewConnection(userID, server)
	reg.Bind(conn)
	return conn, client
}

func readText(t *testing.T, ws *websocket.Conn) []byte {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return data
}

// expectSilence asserts nothing arrives on ws within the grace window.
// The read timeout poisons the socket permanently (any reader error is
// terminal for gorilla), so this must be the last read on ws. Mid-test,
// assert ordering instead: deliver a sentinel frame and check it is the
// next read, which proves nothing was delivered before it.
func expectSilence(t *testing.T, ws *websocket.Conn) {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	if _, data, err := ws.ReadMessage(); err == nil {
		t.Fatalf("unexpected delivery: %s", data)
	}
}
