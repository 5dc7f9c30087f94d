package sqlstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"echoes-planner/internal/store"
)

// LoadPreferences reads all stored key/value pairs for a user. Each value is
// stored JSON-encoded; a value that fails to decode is returned as the raw
// stored string so legacy/foreign rows survive.
func (s *Store) LoadPreferences(userID int64) (map[string]any, error) {
	rows, err := s.sql.Query("SELECT `key`, value FROM user_preferences WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]any)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("load preferences: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			prefs[key] = raw
			continue
		}
		prefs[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences JSON-encodes every value and upserts a (user, key) row in
// one transaction. Keys not present in the argument are left untouched.
func (s *Store) SavePreferences(userID int64, prefs map[string]any) error {
	tx, err := s.sql.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for key, value := range prefs {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode preference %q: %w", key, err)
		}
		var id int64
		err = tx.QueryRow("SELECT id FROM user_preferences WHERE user_id = ? AND `key` = ?", userID, key).Scan(&id)
		switch {
		case err == sql.ErrNoRows:
			_, err = tx.Exec("INSERT INTO user_preferences (user_id, `key`, value) VALUES (?, ?, ?)", userID, key, string(encoded))
		case err != nil:
		default:
			_, err = tx.Exec("UPDATE user_preferences SET value = ? WHERE id = ?", string(encoded), id)
		}
		if err != nil {
			return fmt.Errorf("save preference %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// EnsureUser returns the id for an email, creating the row if needed. The
// password hash stays NULL until the auth store sets one.
func (s *Store) EnsureUser(email string) (int64, error) {
	id, err := s.UserID(email)
	if err == nil {
		return id, nil
	}
	if err != store.ErrNotFound {
		return 0, err
	}
	res, err := s.sql.Exec(
		"INSERT INTO users (email, password_hash, created_at) VALUES (?, NULL, ?)",
		email, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("ensure user: %w", err)
	}
	return res.LastInsertId()
}

// UserID looks up a user id by email. Returns store.ErrNotFound when absent.
func (s *Store) UserID(email string) (int64, error) {
	var id int64
	err := s.sql.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("user lookup: %w", err)
	}
	return id, nil
}
