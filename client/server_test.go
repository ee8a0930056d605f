package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// chatServer is an in-process stand-in for the chat backend.
type chatServer struct {
	ts       *httptest.Server
	upgrader websocket.Upgrader

	// onConnect runs after the upgrade with the 1-based connection number.
	// Returning false closes the connection immediately.
	onConnect func(n int, conn *websocket.Conn) bool

	connects atomic.Int32
	reject   atomic.Bool
	received chan string

	mu    sync.Mutex
	conns []*websocket.Conn
}

func newChatServer(t *testing.T) *chatServer {
	t.Helper()
	s := &chatServer{received: make(chan string, 16)}
	mux := http.NewServeMux()
	mux.HandleFunc(ChatPath, s.handle)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	s.ts = httptest.NewServer(mux)
	return s
}

func (s *chatServer) wsURL(t *testing.T) string {
	t.Helper()
	u, err := WebSocketURL(s.ts.URL)
	require.NoError(t, err)
	return u
}

func (s *chatServer) Close() {
	s.mu.Lock()
	for _, c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()
	s.ts.Close()
}

func (s *chatServer) handle(w http.ResponseWriter, r *http.Request) {
	if s.reject.Load() {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	n := int(s.connects.Add(1))
	if s.onConnect != nil && !s.onConnect(n, conn) {
		return
	}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var m ClientMessage
		if json.Unmarshal(data, &m) == nil {
			s.received <- m.Message
		}
	}
}

func sendFrame(conn *websocket.Conn, frame string) {
	_ = conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

func sessionFrame() string {
	return `{"type":"session_id","session_id":"` + uuid.NewString() + `"}`
}

func nextEvent(t *testing.T, tr *Transport) Event {
	t.Helper()
	select {
	case ev := <-tr.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for transport event")
		return nil
	}
}

func noEvent(t *testing.T, tr *Transport, wait time.Duration) {
	t.Helper()
	select {
	case ev := <-tr.Events():
		t.Fatalf("unexpected event %#v", ev)
	case <-time.After(wait):
	}
}

func fastBackoff(attempts int) Backoff {
	return Backoff{Base: 2 * time.Millisecond, Max: 8 * time.Millisecond, MaxAttempts: attempts}
}

