package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/livesync/internal/formatter"
	"github.com/desertthunder/livesync/internal/models"
	"github.com/urfave/cli/v3"
)

// event is the JSON form of a dispatched message.
type event struct {
	ID   string      `json:"id,omitempty"`
	Kind models.Kind `json:"kind"`
	Data string      `json:"data"`
}

// Tail follows the event stream, applying each event to the mirrored page and printing
// it, until interrupted.
func (r *Runner) Tail(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	asJSON := cmd.Bool("json")
	printEvent := func(msg models.Message) {
		var err error
		if asJSON {
			err = r.writeJSON(event{ID: msg.ID, Kind: msg.Kind, Data: msg.Data}, false)
		} else {
			err = r.writePlain("%s\n", formatter.FormatMessage(msg))
		}
		if err != nil {
			r.logger.Warn("could not print event", "kind", msg.Kind, "err", err)
		}
	}

	m, err := r.newMirror(r.pagePath(cmd), cmd.String("session"), printEvent)
	if err != nil {
		return err
	}
	defer m.Close()

	if !cmd.Bool("no-page") {
		if err := m.page.Load(ctx); err != nil {
			r.logger.Warn("could not load page, printing events only", "err", err)
		}
	}

	m.client.Connect(ctx)
	r.logger.Info("following events", "url", r.page.URL(r.config.Server.EventsPath))

	<-ctx.Done()
	return nil
}
