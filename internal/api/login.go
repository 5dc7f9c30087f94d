package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"echoes-planner/internal/auth"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if creds.Password == "" {
		writeError(w, 400, "password required")
		return
	}
	id, err := s.users.Register(creds.Email, creds.Password)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, 409, "user already exists")
		return
	case errors.Is(err, auth.ErrBadCredentials):
		writeError(w, 400, "valid email required")
		return
	case err != nil:
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, map[string]interface{}{
		"user_id": id,
		"email":   auth.NormalizeEmail(creds.Email),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	id, err := s.users.Authenticate(creds.Email, creds.Password)
	if errors.Is(err, auth.ErrBadCredentials) {
		writeError(w, 401, "invalid email or password")
		return
	}
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, map[string]interface{}{
		"user_id": id,
		"email":   auth.NormalizeEmail(creds.Email),
	})
}
