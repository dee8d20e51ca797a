package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CollectionStore persists serialized collections as key/value rows.
type CollectionStore struct {
	db *sql.DB
}

func NewCollectionStore(db *sql.DB) *CollectionStore {
	return &CollectionStore{db: db}
}

// Load returns the stored value for key. ok is false when the key has never
// been written.
func (s *CollectionStore) Load(key string) (value []byte, ok bool, err error) {
	var v string
	err = s.db.QueryRow(`SELECT value FROM collections WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load collection %q: %w", key, err)
	}
	return []byte(v), true, nil
}

// Save replaces the stored value for key.
func (s *CollectionStore) Save(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO collections (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save collection %q: %w", key, err)
	}
	return nil
}

func (s *CollectionStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM collections WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete collection %q: %w", key, err)
	}
	return nil
}

func (s *CollectionStore) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM collections ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list collection keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan collection key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
