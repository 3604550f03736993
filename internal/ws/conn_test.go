package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeConn implementa Conn con frames inyectados desde el test.
type fakeConn struct {
	frames    chan []byte
	writes    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan []byte, 16),
		writes: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case <-f.done:
		return 0, nil, errors.New("connection closed")
	case data := <-f.frames:
		return websocket.TextMessage, data, nil
	}
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	select {
	case f.writes <- data:
	default:
	}
	return nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.done) })
	return nil
}

func (f *fakeConn) push(t *testing.T, event string, data any) {
	t.Helper()
	payload, err := marshalEvent(event, data)
	if err != nil {
		t.Fatalf("marshal %s: %v", event, err)
	}
	f.frames <- payload
}

func recvEnvelope(t *testing.T, client *Client) Envelope {
	t.Helper()
	select {
	case payload := <-client.send:
		var env Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for payload")
	}
	return Envelope{}
}

func expectNoPayload(t *testing.T, client *Client) {
	t.Helper()
	select {
	case payload := <-client.send:
		t.Fatalf("unexpected payload delivered: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}
