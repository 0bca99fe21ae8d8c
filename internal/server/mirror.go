package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// Renderer writes a document as HTML.
type Renderer interface {
	Render(w io.Writer) error
}

// Status reports whether the event stream is live.
type Status interface {
	Connected() bool
}

// MirrorHandler serves the mirrored document and a health endpoint.
type MirrorHandler struct {
	doc    Renderer
	stream Status
}

func NewMirrorHandler(doc Renderer, stream Status) *MirrorHandler {
	return &MirrorHandler{doc: doc, stream: stream}
}

// Routes returns the HTTP routes this handler serves.
func (h *MirrorHandler) Routes() []string {
	return []string{"GET /{$}", "GET /healthz"}
}

func (h *MirrorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/healthz" {
		h.health(w)
		return
	}

	var buf bytes.Buffer
	if err := h.doc.Render(&buf); err != nil {
		http.Error(w, "could not render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}

func (h *MirrorHandler) health(w http.ResponseWriter) {
	connected := h.stream != nil && h.stream.Connected()
	status := http.StatusOK
	if !connected {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]bool{"connected": connected})
}
