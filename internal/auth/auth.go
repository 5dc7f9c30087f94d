// Package auth stores user accounts and checks passwords. Hashes are
// bcrypt; emails are the account key and compare case-insensitively.
package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists     = errors.New("user already exists")
	ErrBadCredentials = errors.New("invalid email or password")
)

// UserStore persists accounts and verifies logins. Authenticate returns
// the user's id on success and ErrBadCredentials for both unknown emails
// and wrong passwords.
type UserStore interface {
	Register(email, password string) (int64, error)
	Authenticate(email, password string) (int64, error)
}

// NormalizeEmail lowercases and trims an email for use as the account key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
