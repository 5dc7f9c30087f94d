package auth

import (
	"database/sql"
	"time"
)

// SQLStore keeps accounts in the users table of the relational backend.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an already-open database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Register creates a new account and returns its id. An email row that was
// provisioned without a password is claimed instead of rejected.
func (s *SQLStore) Register(email, password string) (int64, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return 0, ErrBadCredentials
	}
	hash, err := hashPassword(password)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	var existing sql.NullString
	err = tx.QueryRow("SELECT id, password_hash FROM users WHERE email = ?", email).Scan(&id, &existing)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.Exec("INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)",
			email, hash, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return 0, err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, err
		}
	case err != nil:
		return 0, err
	case existing.Valid:
		return 0, ErrUserExists
	default:
		if _, err := tx.Exec("UPDATE users SET password_hash = ? WHERE id = ?", hash, id); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Authenticate verifies a login and returns the account id.
func (s *SQLStore) Authenticate(email, password string) (int64, error) {
	var id int64
	var hash sql.NullString
	err := s.db.QueryRow("SELECT id, password_hash FROM users WHERE email = ?",
		NormalizeEmail(email)).Scan(&id, &hash)
	if err == sql.ErrNoRows {
		return 0, ErrBadCredentials
	}
	if err != nil {
		return 0, err
	}
	if !hash.Valid || !checkPassword(hash.String, password) {
		return 0, ErrBadCredentials
	}
	return id, nil
}
