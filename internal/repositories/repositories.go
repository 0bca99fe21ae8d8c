package repositories

import (
	"fmt"

	"github.com/desertthunder/livesync/internal/shared"
)

// SessionStore persists string values for a single session.
type SessionStore interface {
	// Get returns the value stored under key and whether it exists.
	Get(key string) (string, bool, error)
	// Set stores val under key, replacing any previous value.
	Set(key, val string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Session returns the id this store is scoped to.
	Session() string
	Close() error
}

// NewSessionStore opens the store selected by cfg.Driver, scoped to sessionID.
func NewSessionStore(cfg shared.StorageConfig, sessionID string) (SessionStore, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id", shared.ErrMissingArgument)
	}

	switch cfg.Driver {
	case "", "memory":
		return NewMemorySessionStore(sessionID), nil
	case "sqlite":
		db, err := shared.NewDatabase(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrStorage, err)
		}
		if cfg.MaxOpenConns > 0 {
			shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
		}
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %w", shared.ErrStorage, err)
		}
		return NewSQLiteSessionStore(db, sessionID, true), nil
	case "bolt":
		return OpenBoltSessionStore(cfg.Path, sessionID)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownDriver, cfg.Driver)
	}
}
