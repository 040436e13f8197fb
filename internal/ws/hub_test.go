package ws

import (
	"encoding/json"
	"testing"
)

func TestHubBroadcastToUser(t *testing.T) {
	h := NewHub()
	c1 := &Client{UserID: 1, Send: make(chan []byte, 1)}
	c2 := &Client{UserID: 1, Send: make(chan []byte, 1)}
	other := &Client{UserID: 2, Send: make(chan []byte, 1)}
	h.Register(c1)
	h.Register(c2)
	h.Register(other)

	if h.ConnectionCount() != 3 {
		t.Fatalf("connections = %d, want 3", h.ConnectionCount())
	}

	h.BroadcastToUser(1, map[string]string{"body": "hello"})

	for i, c := range []*Client{c1, c2} {
		select {
		case data := <-c.Send:
			var got map[string]string
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("client %d payload: %v", i, err)
			}
			if got["body"] != "hello" {
				t.Errorf("client %d body = %q", i, got["body"])
			}
		default:
			t.Errorf("client %d received nothing", i)
		}
	}
	select {
	case <-other.Send:
		t.Error("user 2 must not receive user 1's notification")
	default:
	}
}

func TestHubSkipsSlowConsumer(t *testing.T) {
	h := NewHub()
	slow := &Client{UserID: 1, Send: make(chan []byte)} // unbuffered, no reader
	h.Register(slow)
	done := make(chan struct{})
	go func() {
		h.BroadcastToUser(1, "ping")
		close(done)
	}()
	select {
	case <-done:
	case <-slow.Send:
		t.Fatal("unexpected delivery")
	}
}

func TestHubCloseUnregisters(t *testing.T) {
	h := NewHub()
	c := &Client{UserID: 1, Send: make(chan []byte, 1)}
	h.Register(c)
	c.Close()
	if h.ConnectionCount() != 0 {
		t.Errorf("connections = %d, want 0 after close", h.ConnectionCount())
	}
	c.Close() // second close must be a no-op
}
