package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/livesync/internal/models"
	"github.com/desertthunder/livesync/internal/page"
	"github.com/desertthunder/livesync/internal/repositories"
	"github.com/desertthunder/livesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// sessionLister is implemented by stores that outlive the process.
type sessionLister interface {
	Sessions() ([]string, error)
}

type storedQuery struct {
	Session string `json:"session"`
	Query   string `json:"query"`
	Set     bool   `json:"set"`
}

func (r *Runner) openStore(cmd *cli.Command) (repositories.SessionStore, error) {
	session := cmd.String("session")
	if session == "" {
		session = defaultSession
	}
	return repositories.NewSessionStore(r.config.Storage, session)
}

// QueryGet prints the query stored for a session.
func (r *Runner) QueryGet(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	v, ok, err := store.Get(r.config.Page.SessionKey)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(storedQuery{Session: store.Session(), Query: v, Set: ok}, true)
	}
	if !ok {
		return r.writePlain("(no query stored for session %s)\n", store.Session())
	}
	return r.writePlain("%s\n", v)
}

// QuerySet stores a query and prints the tab links that carry it. A missing value stores
// a blank query.
func (r *Runner) QuerySet(ctx context.Context, cmd *cli.Command) error {
	v := cmd.StringArg("value")

	store, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Set(r.config.Page.SessionKey, v); err != nil {
		return err
	}
	r.logger.Debug("query stored", "session", store.Session(), "query", v)

	r.writePlainHeader(fmt.Sprintf("Query %q (session %s)", v, store.Session()))
	for _, tab := range models.Tabs() {
		r.writePlain("%-10s %s\n", tab, page.TabLink(tab, r.config.Page.QueryParam, v))
	}
	return nil
}

// QueryClear removes the stored query.
func (r *Runner) QueryClear(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(r.config.Page.SessionKey); err != nil {
		return err
	}
	return r.writePlain("✓ cleared query for session %s\n", store.Session())
}

// QuerySessions lists the sessions known to persistent storage.
func (r *Runner) QuerySessions(ctx context.Context, cmd *cli.Command) error {
	store, err := repositories.NewSessionStore(r.config.Storage, defaultSession)
	if err != nil {
		return err
	}
	defer store.Close()

	lister, ok := store.(sessionLister)
	if !ok {
		return fmt.Errorf("%w: %s storage does not keep sessions", shared.ErrInvalidArgument, r.config.Storage.Driver)
	}
	sessions, err := lister.Sessions()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(sessions, true)
	}
	if len(sessions) == 0 {
		return r.writePlain("(no sessions)\n")
	}
	return r.writePlain("%s\n", strings.Join(sessions, "\n"))
}

// pageURL returns the absolute page URL carrying the session's stored query, if any.
func (r *Runner) pageURL(path string, store repositories.SessionStore) (string, error) {
	u, err := url.Parse(r.page.URL(path))
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	v, ok, err := store.Get(r.config.Page.SessionKey)
	if err != nil {
		return "", err
	}
	if ok && strings.TrimSpace(v) != "" {
		params := u.Query()
		params.Set(r.config.Page.QueryParam, v)
		u.RawQuery = params.Encode()
	}
	return u.String(), nil
}
