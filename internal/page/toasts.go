package page

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/livesync/internal/dom"
	"github.com/desertthunder/livesync/internal/models"
)

// Toasts inserts notification fragments into a fixed container, newest first.
//
// Entries are never removed here.
type Toasts struct {
	doc    dom.Document
	id     string
	logger *log.Logger
}

func NewToasts(doc dom.Document, containerID string, logger *log.Logger) *Toasts {
	return &Toasts{doc: doc, id: containerID, logger: logger}
}

// Push inserts payload at the front of the container. Every severity is inserted the same way.
func (t *Toasts) Push(sev models.Severity, payload string) {
	container, ok := t.doc.FindByID(t.id)
	if !ok {
		t.logger.Debug("no toast container", "id", t.id, "severity", sev)
		return
	}
	if err := container.Prepend(payload); err != nil {
		t.logger.Warn("could not insert toast", "severity", sev, "err", err)
	}
}

// Entries returns the container's children, newest first.
func (t *Toasts) Entries() []dom.Element {
	container, ok := t.doc.FindByID(t.id)
	if !ok {
		return nil
	}
	return container.Children()
}
