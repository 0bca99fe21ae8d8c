package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/livesync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		Config: shared.DefaultConfig(),
		Logger: logger,
	})

	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "livesync",
		Usage:   "Mirror a live player page in the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Player server base URL (overrides server.base_url)",
			},
			&cli.StringFlag{
				Name:  "storage",
				Usage: "Session storage driver: memory, sqlite or bolt (overrides storage.driver)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error or fatal (overrides log.level)",
			},
		},
		Before:   r.configure,
		Commands: r.register(),
	}
}

// configure loads the config file if present, applies flag overrides and rebuilds the page service.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	config, err := shared.LoadConfig(path)
	switch {
	case err == nil:
		r.config = config
		r.configPath = path
	case errors.Is(err, shared.ErrMissingConfig):
		r.logger.Debug("no config file, using defaults", "path", path)
		r.configPath = path
	default:
		return ctx, err
	}

	if u := cmd.String("url"); u != "" {
		r.config.Server.BaseURL = u
	}
	if d := cmd.String("storage"); d != "" {
		r.config.Storage.Driver = d
	}
	if l := cmd.String("log-level"); l != "" {
		r.config.Log.Level = l
	}
	if err := r.config.Validate(); err != nil {
		return ctx, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := shared.ParseLogLevel(r.config.Log.Level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, level)
	r.page = r.newPageService()
	return ctx, nil
}
