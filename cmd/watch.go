package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/livesync/internal/shared"
	"github.com/desertthunder/livesync/internal/ui"
	"github.com/urfave/cli/v3"
)

// Watch launches the interactive terminal UI mirroring the player page.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	if level, err := shared.ParseLogLevel(r.config.Log.Level); err == nil {
		shared.SetLogLevel(fileLogger, level)
	}
	r.SetLogger(fileLogger)

	m, err := r.newMirror(r.pagePath(cmd), cmd.String("session"), nil)
	if err != nil {
		return err
	}
	defer m.Close()

	model := ui.NewModel(ctx, ui.ModelOpts{
		Page:       m.page,
		Config:     r.config.Page,
		Player:     r.page,
		Stream:     m.client,
		Visibility: m.reconciler,
		Title:      "livesync · " + r.page.BaseURL(),
		Logger:     r.logger,
	})

	if err := ui.Run(ctx, model); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
