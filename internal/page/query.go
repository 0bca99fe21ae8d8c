package page

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/desertthunder/livesync/internal/dom"
	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/shared"
)

// Storage is session-scoped key/value storage.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, val string) error
}

// Location is the address of the current page.
type Location interface {
	URL() *url.URL
	// ReplaceState swaps the current history entry for u without navigating.
	ReplaceState(u *url.URL)
}

// History is an in-memory session history implementing [Location].
type History struct {
	mu      sync.Mutex
	entries []*url.URL
}

// NewHistory starts a history at u.
func NewHistory(u *url.URL) *History {
	return &History{entries: []*url.URL{cloneURL(u)}}
}

// ParseHistory starts a history at the parsed raw URL.
func ParseHistory(raw string) (*History, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	return NewHistory(u), nil
}

func (h *History) URL() *url.URL {
	h.mu.Lock()
	defer h.mu.Unlock()
	return cloneURL(h.entries[len(h.entries)-1])
}

func (h *History) ReplaceState(u *url.URL) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[len(h.entries)-1] = cloneURL(u)
}

// PushState adds a new entry for u.
func (h *History) PushState(u *url.URL) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, cloneURL(u))
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func cloneURL(u *url.URL) *url.URL {
	c := *u
	return &c
}

// QueryStateOpts configures a [QueryState].
type QueryStateOpts struct {
	Document   dom.Document
	Storage    Storage
	Location   Location
	SessionKey string
	Param      string
	InputID    string
	Tabs       map[models.Tab]string // tab link element ids
}

// QueryState keeps the search query consistent across session storage, the URL and the
// search tab links.
type QueryState struct {
	doc     dom.Document
	store   Storage
	loc     Location
	key     string
	param   string
	inputID string
	tabs    map[models.Tab]string
}

func NewQueryState(opts QueryStateOpts) *QueryState {
	return &QueryState{
		doc:     opts.Document,
		store:   opts.Storage,
		loc:     opts.Location,
		key:     opts.SessionKey,
		param:   opts.Param,
		inputID: opts.InputID,
		tabs:    opts.Tabs,
	}
}

// Load copies the stored query into the search input, clearing it when nothing is stored.
func (q *QueryState) Load() (string, bool, error) {
	v, ok, err := q.store.Get(q.key)
	if err != nil {
		return "", false, err
	}
	if input, found := q.doc.FindByID(q.inputID); found {
		input.SetValue(v)
	}
	return v, ok, nil
}

// Set stores v, mirrors it into the URL and rewrites the tab links.
//
// A blank v removes the URL parameter, while tab links always carry it, even empty.
func (q *QueryState) Set(v string) error {
	if err := q.store.Set(q.key, v); err != nil {
		return err
	}

	u := q.loc.URL()
	params := u.Query()
	if strings.TrimSpace(v) != "" {
		params.Set(q.param, v)
	} else {
		params.Del(q.param)
	}
	u.RawQuery = params.Encode()
	q.loc.ReplaceState(u)

	for _, tab := range models.Tabs() {
		el, ok := q.doc.FindByID(q.tabs[tab])
		if !ok {
			continue
		}
		el.SetAttr("href", TabLink(tab, q.param, v))
	}
	return nil
}

// TabLink returns the href of tab carrying v as param.
func TabLink(tab models.Tab, param, v string) string {
	return tab.Path() + "?" + url.QueryEscape(param) + "=" + url.QueryEscape(v)
}
