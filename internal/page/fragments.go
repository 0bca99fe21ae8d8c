package page

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/livesync/internal/dom"
	"github.com/desertthunder/livesync/internal/models"
)

// Fragments signals subscribed elements to refresh.
type Fragments struct {
	doc    dom.Document
	attr   string
	logger *log.Logger
}

// NewFragments creates a dispatcher matching elements whose attr names an event kind.
func NewFragments(doc dom.Document, attr string, logger *log.Logger) *Fragments {
	return &Fragments{doc: doc, attr: attr, logger: logger}
}

// Notify refreshes every element subscribed to kind. A failed refresh is logged and
// does not stop the others.
func (f *Fragments) Notify(ctx context.Context, kind models.Kind) {
	for _, el := range f.doc.FindAllByAttribute(f.attr, string(kind)) {
		if err := el.Refresh(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			f.logger.Warn("fragment refresh failed", "kind", kind, "element", el.ID(), "err", err)
		}
	}
}

// Subscribers returns the elements subscribed to kind.
func (f *Fragments) Subscribers(kind models.Kind) []dom.Element {
	return f.doc.FindAllByAttribute(f.attr, string(kind))
}
