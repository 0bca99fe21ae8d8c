package main

import (
	"context"

	"github.com/desertthunder/livesync/internal/shared"
	"github.com/urfave/cli/v3"
)

var openBrowser = shared.OpenBrowser

// Open opens the player page in the default browser.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	target, err := r.pageURL(r.pagePath(cmd), store)
	if err != nil {
		return err
	}

	r.logger.Info("opening browser", "url", target)
	if err := openBrowser(target); err != nil {
		return err
	}
	return r.writePlain("Opened %s\n", target)
}
