package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const usersFile = "users.json"

type fileUser struct {
	ID           int64  `json:"id"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    string `json:"created_at"`
}

// FileStore keeps accounts in a single JSON document on disk.
type FileStore struct {
	path string

	mu    sync.Mutex
	users map[string]fileUser
}

// OpenFileStore loads (or creates) the account file under dir.
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create auth dir: %w", err)
	}
	s := &FileStore{
		path:  filepath.Join(dir, usersFile),
		users: make(map[string]fileUser),
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", usersFile, err)
	}
	if err := json.Unmarshal(raw, &s.users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", usersFile, err)
	}
	return s, nil
}

// Register creates a new account and returns its id.
func (s *FileStore) Register(email, password string) (int64, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return 0, ErrBadCredentials
	}
	hash, err := hashPassword(password)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; exists {
		return 0, ErrUserExists
	}
	id := s.nextID()
	s.users[email] = fileUser{
		ID:           id,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.flush(); err != nil {
		delete(s.users, email)
		return 0, err
	}
	return id, nil
}

// Authenticate verifies a login and returns the account id.
func (s *FileStore) Authenticate(email, password string) (int64, error) {
	s.mu.Lock()
	user, ok := s.users[NormalizeEmail(email)]
	s.mu.Unlock()

	if !ok || !checkPassword(user.PasswordHash, password) {
		return 0, ErrBadCredentials
	}
	return user.ID, nil
}

func (s *FileStore) nextID() int64 {
	var max int64
	for _, u := range s.users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

func (s *FileStore) flush() error {
	raw, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0o600)
}
