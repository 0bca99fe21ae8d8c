package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/livesync/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve keeps a mirror of the page current and serves it over HTTP until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := r.newMirror(r.pagePath(cmd), cmd.String("session"), nil)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.page.Load(ctx); err != nil {
		return err
	}
	m.client.Connect(ctx)

	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(server.NewMirrorHandler(m.page.Tree, m.client))

	addr := cmd.String("addr")
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("serving mirror of %s at %v", r.page.BaseURL(), addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	r.writePlain("→ Mirror of %s at http://%s\n", r.page.URL(r.pagePath(cmd)), addr)

	select {
	case <-ctx.Done():
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}
	return nil
}
