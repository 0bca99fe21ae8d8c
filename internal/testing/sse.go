package testing

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// SSEServer is an httptest server speaking text/event-stream.
type SSEServer struct {
	*httptest.Server

	frames    chan string
	connected chan struct{}
	done      chan struct{}
	once      sync.Once
}

// NewSSEServer starts a server that streams frames passed to Send. It is closed with the test.
func NewSSEServer(t *testing.T) *SSEServer {
	s := &SSEServer{
		frames:    make(chan string, 16),
		connected: make(chan struct{}, 16),
		done:      make(chan struct{}),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *SSEServer) serve(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	select {
	case s.connected <- struct{}{}:
	default:
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		case frame := <-s.frames:
			io.WriteString(w, frame)
			flusher.Flush()
		}
	}
}

// Send queues one named event. Multi-line data is split across data fields.
func (s *SSEServer) Send(event, data string) {
	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	s.frames <- b.String()
}

// WaitConnected blocks until a client opens the stream.
func (s *SSEServer) WaitConnected(t *testing.T) {
	t.Helper()
	select {
	case <-s.connected:
	case <-time.After(2 * time.Second):
		t.Fatal("no client connected to the event stream")
	}
}

// Close ends open streams and shuts the server down.
func (s *SSEServer) Close() {
	s.once.Do(func() {
		close(s.done)
		s.Server.CloseClientConnections()
		s.Server.Close()
	})
}
