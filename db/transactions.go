package db

import (
	"fmt"
	"time"
)

// Set upserts a key in its own transaction. Last writer wins, which is the
// intended discipline: there is exactly one logical writer per key.
func (s *Store) Set(key, value string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Format(time.RFC3339))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("set key %s: %w", key, err)
	}
	return tx.Commit()
}
