package shared

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// sessionDSNParams lets a second process (a `query set` next to a running `watch`)
// wait for the write lock instead of failing with SQLITE_BUSY.
const sessionDSNParams = "_busy_timeout=5000&_journal_mode=WAL"

// NewDatabase opens the SQLite session database at path. ":memory:" opens a private
// in-memory database, which only lives as long as its single connection.
func NewDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", sessionDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func sessionDSN(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?" + sessionDSNParams
}

// ConfigureDatabase sets connection pool limits. Values below one keep the
// [database/sql] default.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
}
