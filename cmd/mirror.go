package main

import (
	"context"
	"sync"

	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/page"
	"github.com/desertthunder/livesync/internal/repositories"
	"github.com/desertthunder/livesync/internal/stream"
	"github.com/urfave/cli/v3"
)

// mirror is a page bound to its event stream and session storage.
type mirror struct {
	page       *page.Page
	client     *stream.Client
	reconciler *stream.Reconciler
	store      repositories.SessionStore

	mu     sync.Mutex
	closed bool
}

// newMirror builds the page at path and the stream that keeps it current. Nothing is
// fetched or connected yet. onDispatch may be nil.
func (r *Runner) newMirror(path, session string, onDispatch func(models.Message)) (*mirror, error) {
	store, err := repositories.NewSessionStore(r.config.Storage, session)
	if err != nil {
		return nil, err
	}
	loc, err := page.ParseHistory(r.page.URL(path))
	if err != nil {
		store.Close()
		return nil, err
	}

	m := &mirror{store: store}
	m.page = page.New(page.Opts{
		Config:   r.config.Page,
		Path:     path,
		Loader:   r.page,
		Poster:   r.page,
		Storage:  store,
		Location: loc,
		Logger:   r.logger,
	})

	transport := stream.NewSSETransport(r.page.URL(r.config.Server.EventsPath), stream.SSETransportOpts{
		HTTPClient: r.httpClient,
		Backoff:    r.config.Stream,
		Logger:     r.logger,
	})
	m.client = stream.NewClient(stream.ClientOpts{
		Transport:  transport,
		Fragments:  m.page.Fragments,
		Notifier:   m.page.Toasts,
		Controls:   m.page.Controls,
		Reloader:   m,
		Logger:     r.logger,
		Buffer:     r.config.Stream.Buffer,
		OnDispatch: onDispatch,
	})
	m.reconciler = stream.NewReconciler(m.client, m.page.Fragments, r.logger)
	return m, nil
}

// Reload reloads the page and reopens the stream the reload event closed. Once the
// mirror is closed the stream stays closed.
func (m *mirror) Reload(ctx context.Context) error {
	err := m.page.Reload(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.client.Connect(ctx)
	}
	return err
}

func (m *mirror) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.client.Teardown()
	return m.store.Close()
}

func (r *Runner) pagePath(cmd *cli.Command) string {
	if p := cmd.String("path"); p != "" {
		return p
	}
	if p := r.config.Server.PagePath; p != "" {
		return p
	}
	return "/"
}
