package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestEventStreamBroadcast(t *testing.T) {
	s, ts := newTestServer(t, &Config{APIKey: "secret"})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	header := http.Header{"X-Api-Key": []string{"secret"}}

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	// Wait for the handler goroutine to register the connection
	deadline := time.Now().Add(time.Second)
	for {
		s.events.mu.Lock()
		registered := len(s.events.clients) > 0
		s.events.mu.Unlock()
		if registered {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("connection never registered with hub")
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.events.broadcast(statusEvent{State: "PRINTING", Progress: 42})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var event statusEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if event.State != "PRINTING" || event.Progress != 42 {
		t.Errorf("event = %+v, want PRINTING at 42", event)
	}
}

func TestEventStreamRequiresAuth(t *testing.T) {
	_, ts := newTestServer(t, &Config{APIKey: "secret"})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("Dial() succeeded without credentials")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake response = %+v, want 401", resp)
	}
	if resp != nil {
		resp.Body.Close()
	}
}
