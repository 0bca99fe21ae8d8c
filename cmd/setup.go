package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/livesync/internal/repositories"
	"github.com/desertthunder/livesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the default config file to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ wrote %s\n", path)
}

// SetupDatabase initializes the configured session storage.
//
// For sqlite this runs migrations; bolt creates its buckets on open. Memory storage needs nothing.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Storage

	switch cfg.Driver {
	case "sqlite":
		r.logger.Info("initializing database", "path", cfg.Path)

		db, err := shared.NewDatabase(cfg.Path)
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		defer db.Close()

		shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	case "bolt":
		r.logger.Info("initializing bolt store", "path", cfg.Path)
		store, err := repositories.OpenBoltSessionStore(cfg.Path, defaultSession)
		if err != nil {
			return err
		}
		if err := store.Close(); err != nil {
			return err
		}
	default:
		return r.writePlain("%s storage needs no setup\n", cfg.Driver)
	}

	r.logger.Infof("setup complete for storage: %v", cfg.Path)
	return r.writePlain("✓ %s storage ready at %s\n", cfg.Driver, cfg.Path)
}

// SetupRollback reverts the most recent sqlite migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Storage
	if cfg.Driver != "sqlite" {
		return fmt.Errorf("%w: rollback needs sqlite storage, have %s", shared.ErrInvalidArgument, cfg.Driver)
	}

	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return r.writePlain("✓ rolled back latest migration\n")
}
