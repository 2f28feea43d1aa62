// ABOUTME: Process-wide key/value configuration, stored in the database rather than a file
package store

import "database/sql"

// GetConfig returns the value for key, or nil if unset.
func (s *Store) GetConfig(key string) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	err := s.db.QueryRow(`SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreErr("get config", err)
	}
	return &value, nil
}

// SetConfig upserts key to value. Callers are expected to have already
// validated key against the allowlist.
func (s *Store) SetConfig(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO config (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return wrapStoreErr("set config", err)
}
