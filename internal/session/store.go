// Package session persists the login token between runs.
//
// One bucket, one key. Absence of the key means logged out; nothing else
// is stored locally, the profile and transcript are refetched on startup.
package session

import (
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketSession = []byte("session")
	keyToken      = []byte("token")
)

// Store is a bbolt-backed token store.
type Store struct {
	db *bolt.DB
}

// DefaultPath returns the per-user location of the session database.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "smart-doctor-cli", "session.db"), nil
}

// Open opens or creates the session database at path, creating parent
// directories as needed. The file lock times out rather than blocking
// forever when another process holds the database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Token returns the stored token, or "" when none is stored.
func (s *Store) Token() (string, error) {
	var token string
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketSession).Get(keyToken); v != nil {
			token = string(v)
		}
		return nil
	})
	return token, err
}

// SetToken stores token, replacing any previous one.
func (s *Store) SetToken(token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Put(keyToken, []byte(token))
	})
}

// Clear removes the stored token.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Delete(keyToken)
	})
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}
