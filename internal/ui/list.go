package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/livesync/internal/dom"
)

var (
	_ list.Item = queueItem{}
)

// queueItem wraps one entry of a sortable list to implement [list.Item].
type queueItem struct {
	key   string
	title string
}

func newQueueItem(key string, el dom.Element) queueItem {
	return queueItem{key: key, title: collapse(el.Text())}
}

func (i queueItem) FilterValue() string { return i.title }
func (i queueItem) Title() string       { return i.title }
func (i queueItem) Description() string {
	if i.key == i.title {
		return ""
	}
	return i.key
}
