package page

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/livesync/internal/dom"
	"github.com/desertthunder/livesync/internal/formatter"
)

// ControlIDs names the elements [Controls] writes to.
type ControlIDs struct {
	Volume   string
	Progress string
	Position string
}

// Controls writes latency-sensitive payloads directly into input values.
type Controls struct {
	doc    dom.Document
	ids    ControlIDs
	logger *log.Logger
}

func NewControls(doc dom.Document, ids ControlIDs, logger *log.Logger) *Controls {
	return &Controls{doc: doc, ids: ids, logger: logger}
}

// SetVolume writes raw into the volume control.
//
// The value is not clamped. A payload that is not a number is logged and dropped.
func (c *Controls) SetVolume(raw string) {
	if _, err := formatter.ParseVolume(raw); err != nil {
		c.logger.Warn("dropping volume update", "err", err)
		return
	}
	if el, ok := c.doc.FindByID(c.ids.Volume); ok {
		el.SetValue(raw)
	}
}

// SetPosition writes raw into the progress control and, independently, the formatted
// elapsed time into the position display.
//
// A payload that is not a number is logged and dropped.
func (c *Controls) SetPosition(raw string) {
	ms, err := formatter.ParsePosition(raw)
	if err != nil {
		c.logger.Warn("dropping position update", "err", err)
		return
	}
	if el, ok := c.doc.FindByID(c.ids.Progress); ok {
		el.SetValue(raw)
	}
	if el, ok := c.doc.FindByID(c.ids.Position); ok {
		el.SetText(formatter.FormatPosition(ms))
	}
}
