package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/livesync/internal/shared"
)

// SQLiteSessionStore stores values in the session_storage table.
type SQLiteSessionStore struct {
	db      *sql.DB
	session string
	owned   bool
}

// NewSQLiteSessionStore creates a store over db, which must already be migrated.
//
// When owned is true, Close closes db.
func NewSQLiteSessionStore(db *sql.DB, sessionID string, owned bool) *SQLiteSessionStore {
	return &SQLiteSessionStore{db: db, session: sessionID, owned: owned}
}

// Get retrieves the value stored under key for this session
func (s *SQLiteSessionStore) Get(key string) (string, bool, error) {
	query := `SELECT value FROM session_storage WHERE session_id = ? AND key = ?`

	var value string
	err := s.db.QueryRow(query, s.session, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to query %s: %w", shared.ErrStorage, key, err)
	}
	return value, true, nil
}

// Set upserts the value stored under key for this session
func (s *SQLiteSessionStore) Set(key, val string) error {
	query := `
		INSERT INTO session_storage (session_id, key, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (session_id, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := s.db.Exec(query, s.session, key, val); err != nil {
		return fmt.Errorf("%w: failed to store %s: %w", shared.ErrStorage, key, err)
	}
	return nil
}

func (s *SQLiteSessionStore) Delete(key string) error {
	query := `DELETE FROM session_storage WHERE session_id = ? AND key = ?`
	if _, err := s.db.Exec(query, s.session, key); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %w", shared.ErrStorage, key, err)
	}
	return nil
}

// Sessions lists the session ids holding at least one value, most recently written first.
func (s *SQLiteSessionStore) Sessions() ([]string, error) {
	query := `
		SELECT session_id FROM session_storage
		GROUP BY session_id
		ORDER BY MAX(updated_at) DESC, session_id
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list sessions: %w", shared.ErrStorage, err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: failed to scan session: %w", shared.ErrStorage, err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

func (s *SQLiteSessionStore) Session() string { return s.session }

func (s *SQLiteSessionStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
