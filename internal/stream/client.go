package stream

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/shared"
)

// Fragments refreshes elements subscribed to an event kind.
type Fragments interface {
	Notify(ctx context.Context, kind models.Kind)
}

// Notifier shows notifications.
type Notifier interface {
	Push(sev models.Severity, payload string)
}

// Controls receives scalar payloads.
type Controls interface {
	SetVolume(raw string)
	SetPosition(raw string)
}

// Reloader reloads the whole page.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ClientOpts configures a [Client].
type ClientOpts struct {
	Transport Transport
	Fragments Fragments
	Notifier  Notifier
	Controls  Controls
	Reloader  Reloader
	Logger    *log.Logger
	// Buffer is the capacity of the channel between transport and dispatcher.
	Buffer int
	// OnDispatch, if set, runs after each message is handled.
	OnDispatch func(models.Message)
}

// handler handles one message. It returns true when the connection must end.
type handler func(ctx context.Context, msg models.Message) bool

// connection is one live subscription and its dispatch goroutine.
type connection struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

func (c *connection) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Client holds at most one live connection and routes its messages.
type Client struct {
	transport  Transport
	fragments  Fragments
	notifier   Notifier
	controls   Controls
	reloader   Reloader
	logger     *log.Logger
	buffer     int
	onDispatch func(models.Message)
	routes     map[models.Kind]handler

	mu   sync.Mutex
	conn *connection
}

func NewClient(opts ClientOpts) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	c := &Client{
		transport:  opts.Transport,
		fragments:  opts.Fragments,
		notifier:   opts.Notifier,
		controls:   opts.Controls,
		reloader:   opts.Reloader,
		logger:     shared.WithLogger(logger, "component", "stream"),
		buffer:     max(0, opts.Buffer),
		onDispatch: opts.OnDispatch,
	}
	c.routes = c.newRoutes()
	return c
}

// newRoutes maps every kind in [models.Kinds] to its handler.
func (c *Client) newRoutes() map[models.Kind]handler {
	refresh := func(ctx context.Context, msg models.Message) bool {
		c.fragments.Notify(ctx, msg.Kind)
		return false
	}
	notify := func(ctx context.Context, msg models.Message) bool {
		sev, _ := msg.Kind.Severity()
		c.notifier.Push(sev, msg.Data)
		return false
	}

	return map[models.Kind]handler{
		models.KindReload:    func(context.Context, models.Message) bool { return true },
		models.KindStatus:    refresh,
		models.KindTracklist: refresh,
		models.KindVolume: func(_ context.Context, msg models.Message) bool {
			c.controls.SetVolume(msg.Data)
			return false
		},
		models.KindPosition: func(_ context.Context, msg models.Message) bool {
			c.controls.SetPosition(msg.Data)
			return false
		},
		models.KindError:   notify,
		models.KindWarn:    notify,
		models.KindSuccess: notify,
		models.KindInfo:    notify,
	}
}

// Connect replaces the current connection with a new one. Transport failures are logged,
// not returned; the transport's own reconnect policy or a later Connect recovers.
func (c *Client) Connect(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.teardown()

	connCtx, cancel := context.WithCancel(ctx)
	conn := &connection{id: shared.GenerateID(), cancel: cancel, done: make(chan struct{})}
	logger := shared.WithLogger(c.logger, "conn", conn.id[:8])

	msgs := make(chan models.Message, c.buffer)
	subscribed := make(chan struct{})
	go func() {
		defer close(subscribed)
		defer close(msgs)
		err := c.transport.Subscribe(connCtx, msgs)
		switch {
		case err == nil:
			logger.Info("event stream ended")
		case errors.Is(err, context.Canceled):
		default:
			logger.Warn("event stream failed", "err", err)
		}
	}()

	go c.run(ctx, connCtx, conn, msgs, subscribed, logger)

	c.conn = conn
	logger.Debug("connected")
}

// run dispatches messages until the stream ends, the connection is cancelled or a
// reload arrives. The reload hook runs only after the connection is fully closed.
func (c *Client) run(parent, ctx context.Context, conn *connection, msgs <-chan models.Message, subscribed <-chan struct{}, logger *log.Logger) {
	reload := false

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case msg, ok := <-msgs:
			if !ok {
				break loop
			}
			if ctx.Err() != nil {
				break loop
			}
			if c.dispatch(ctx, msg, logger) {
				reload = true
				break loop
			}
		}
	}

	conn.cancel()
	<-subscribed
	close(conn.done)

	if reload && parent.Err() == nil && c.reloader != nil {
		if err := c.reloader.Reload(parent); err != nil {
			logger.Error("page reload failed", "err", err)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, msg models.Message, logger *log.Logger) bool {
	h, ok := c.routes[msg.Kind]
	if !ok {
		logger.Debug("ignoring event", "err", shared.ErrUnknownEvent, "kind", msg.Kind)
		return false
	}

	terminal := h(ctx, msg)
	if c.onDispatch != nil {
		c.onDispatch(msg)
	}
	return terminal
}

// Teardown closes the current connection and waits for its goroutines. It is a no-op
// when nothing is connected.
func (c *Client) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardown()
}

// teardown requires c.mu.
func (c *Client) teardown() {
	if c.conn == nil {
		return
	}
	c.conn.cancel()
	<-c.conn.done
	c.logger.Debug("disconnected", "conn", c.conn.id[:8])
	c.conn = nil
}

// Connected reports whether a connection is live.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && !c.conn.closed()
}
