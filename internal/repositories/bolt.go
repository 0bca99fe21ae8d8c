package repositories

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/livesync/internal/shared"
	"go.etcd.io/bbolt"
)

var sessionsBucket = []byte("sessions")

// BoltSessionStore keeps each session's values in a nested bucket of a bbolt file.
type BoltSessionStore struct {
	db      *bbolt.DB
	session string
}

// OpenBoltSessionStore opens (or creates) the bbolt file at path.
func OpenBoltSessionStore(path, sessionID string) (*BoltSessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: could not create storage directory: %w", shared.ErrStorage, err)
	}

	options := &bbolt.Options{Timeout: 1 * time.Second}
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open bbolt database: %w", shared.ErrStorage, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: could not create sessions bucket: %w", shared.ErrStorage, err)
	}

	return &BoltSessionStore{db: db, session: sessionID}, nil
}

func (s *BoltSessionStore) Get(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket).Bucket([]byte(s.session))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", shared.ErrStorage, err)
	}
	return value, found, nil
}

func (s *BoltSessionStore) Set(key, val string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(sessionsBucket).CreateBucketIfNotExists([]byte(s.session))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(val))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStorage, err)
	}
	return nil
}

func (s *BoltSessionStore) Delete(key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket).Bucket([]byte(s.session))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStorage, err)
	}
	return nil
}

// Sessions lists the session ids that have a bucket, in key order.
func (s *BoltSessionStore) Sessions() ([]string, error) {
	var sessions []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).ForEach(func(k, v []byte) error {
			if v == nil {
				sessions = append(sessions, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrStorage, err)
	}
	return sessions, nil
}

func (s *BoltSessionStore) Session() string { return s.session }

func (s *BoltSessionStore) Close() error {
	return s.db.Close()
}
