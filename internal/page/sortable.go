package page

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/livesync/internal/dom"
)

// SortEvent describes a finished drag.
type SortEvent struct {
	List  dom.Element
	From  int
	To    int
	Order []string // item keys after the move
}

// SortablesOpts configures [Sortables].
type SortablesOpts struct {
	Class     string
	Handle    string
	Animation time.Duration
	// OnEnd runs after every successful move. Persisting the order is its job.
	OnEnd  func(ctx context.Context, ev SortEvent)
	Logger *log.Logger
}

// Sortables tracks which lists have drag reordering attached.
type Sortables struct {
	mu        sync.Mutex
	class     string
	handle    string
	animation time.Duration
	onEnd     func(ctx context.Context, ev SortEvent)
	logger    *log.Logger
	bound     map[dom.Element]*Sortable
	order     []*Sortable
}

func NewSortables(opts SortablesOpts) *Sortables {
	return &Sortables{
		class:     opts.Class,
		handle:    opts.Handle,
		animation: opts.Animation,
		onEnd:     opts.OnEnd,
		logger:    opts.Logger,
		bound:     make(map[dom.Element]*Sortable),
	}
}

// Bind attaches reordering to root and every sortable below it, skipping lists already
// bound. It returns how many lists were newly bound.
func (s *Sortables) Bind(root dom.Element) int {
	candidates := root.FindAllByClass(s.class)
	if root.HasClass(s.class) {
		candidates = append([]dom.Element{root}, candidates...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()
	bound := 0
	for _, el := range candidates {
		if _, ok := s.bound[el]; ok {
			continue
		}
		list := &Sortable{owner: s, list: el}
		s.bound[el] = list
		s.order = append(s.order, list)
		bound++
	}
	if bound > 0 {
		s.logger.Debug("bound sortable lists", "count", bound, "total", len(s.order))
	}
	return bound
}

// Lists returns the bound lists still attached to the document, in binding order.
func (s *Sortables) Lists() []*Sortable {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	out := make([]*Sortable, len(s.order))
	copy(out, s.order)
	return out
}

// Lookup returns the binding for el.
func (s *Sortables) Lookup(el dom.Element) (*Sortable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.bound[el]
	return list, ok
}

// prune forgets lists swapped out of the document. Callers hold s.mu.
func (s *Sortables) prune() {
	kept := s.order[:0]
	for _, list := range s.order {
		if list.list.Attached() {
			kept = append(kept, list)
			continue
		}
		delete(s.bound, list.list)
	}
	for i := len(kept); i < len(s.order); i++ {
		s.order[i] = nil
	}
	s.order = kept
}

// Sortable is one list with reordering attached.
type Sortable struct {
	owner *Sortables
	list  dom.Element
}

func (l *Sortable) Element() dom.Element { return l.list }

// Handles returns the drag handles of the list's items.
func (l *Sortable) Handles() []dom.Element { return l.list.FindAllByClass(l.owner.handle) }

func (l *Sortable) Animation() time.Duration { return l.owner.animation }

// Items returns the item keys in current order.
func (l *Sortable) Items() []string {
	kids := l.list.Children()
	keys := make([]string, 0, len(kids))
	for _, k := range kids {
		keys = append(keys, itemKey(k))
	}
	return keys
}

// Move drags the item at from to position to and reports the new order.
func (l *Sortable) Move(ctx context.Context, from, to int) error {
	if err := l.list.MoveChild(from, to); err != nil {
		return err
	}
	if from == to || l.owner.onEnd == nil {
		return nil
	}
	l.owner.onEnd(ctx, SortEvent{List: l.list, From: from, To: to, Order: l.Items()})
	return nil
}

func itemKey(el dom.Element) string {
	if v, ok := el.Attr("data-id"); ok && v != "" {
		return v
	}
	if id := el.ID(); id != "" {
		return id
	}
	return strings.TrimSpace(el.Text())
}
