package stream

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/shared"
)

// Visibility is whether the page is shown to the user.
type Visibility int

const (
	Hidden Visibility = iota
	Visible
)

func (v Visibility) String() string {
	if v == Visible {
		return "visible"
	}
	return "hidden"
}

// Connector (re)establishes the event stream.
type Connector interface {
	Connect(ctx context.Context)
}

// resyncKinds are refreshed when the page becomes visible.
var resyncKinds = []models.Kind{models.KindTracklist, models.KindStatus}

// Reconciler reconnects and resynchronizes the page when it becomes visible again.
type Reconciler struct {
	mu        sync.Mutex
	state     Visibility
	client    Connector
	fragments Fragments
	logger    *log.Logger
}

// NewReconciler starts in the [Visible] state.
func NewReconciler(client Connector, fragments Fragments, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Reconciler{
		state:     Visible,
		client:    client,
		fragments: fragments,
		logger:    shared.WithLogger(logger, "component", "visibility"),
	}
}

// Observe records the current visibility. On a hidden to visible flip it reconnects and
// refreshes the tracklist and status fragments, and reports true. Anything else is a no-op.
func (r *Reconciler) Observe(ctx context.Context, v Visibility) bool {
	r.mu.Lock()
	prev := r.state
	r.state = v
	r.mu.Unlock()

	if prev == v {
		return false
	}
	r.logger.Debug("visibility changed", "from", prev, "to", v)
	if v != Visible {
		return false
	}

	r.client.Connect(ctx)
	for _, kind := range resyncKinds {
		r.fragments.Notify(ctx, kind)
	}
	return true
}

// State returns the last observed visibility.
func (r *Reconciler) State() Visibility {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}
