// Package auth supplies session identity for the chat API: registration,
// username/password login and uuid session tokens. The Q&A core only ever
// consumes the resolved user id.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pcheng/weather-qna/backend/internal/model/auth"
)

var (
	ErrInvalidInput       = errors.New("username and password are required")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

// Service keeps users and sessions in process memory.
type Service struct {
	mu         sync.RWMutex
	byUsername map[string]auth.User
	byID       map[string]auth.User
	sessions   map[string]auth.Session
	sessionTTL time.Duration
}

// NewService bootstraps the in-memory identity provider.
func NewService(sessionTTL time.Duration) *Service {
	return &Service{
		byUsername: make(map[string]auth.User),
		byID:       make(map[string]auth.User),
		sessions:   make(map[string]auth.Session),
		sessionTTL: sessionTTL,
	}
}

// Register creates a new user account.
func (s *Service) Register(_ context.Context, username, password, email string) (auth.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return auth.User{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[username]; ok {
		return auth.User{}, ErrUsernameTaken
	}

	hash, err := hashPassword(password)
	if err != nil {
		return auth.User{}, err
	}

	user := auth.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	s.byUsername[username] = user
	s.byID[user.ID] = user
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(_ context.Context, username, password string) (auth.Session, auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byUsername[strings.TrimSpace(username)]
	if !ok || !verifyPassword(user.PasswordHash, password) {
		return auth.Session{}, auth.User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := auth.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	s.sessions[session.Token] = session
	return session, user, nil
}

// Logout revokes a session token. Unknown tokens are a no-op.
func (s *Service) Logout(_ context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Lookup resolves a session token to its user, dropping expired sessions.
func (s *Service) Lookup(_ context.Context, token string) (auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return auth.User{}, ErrSessionNotFound
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		delete(s.sessions, token)
		return auth.User{}, ErrSessionNotFound
	}

	user, ok := s.byID[session.UserID]
	if !ok {
		return auth.User{}, ErrSessionNotFound
	}
	return user, nil
}

// hashPassword stores "salt$digest" with a random per-user salt.
func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	digest := sha256.Sum256(append(salt, []byte(password)...))
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(digest[:]), nil
}

func verifyPassword(stored, password string) bool {
	parts := strings.SplitN(stored, "$", 2)
	if len(parts) != 2 {
		return false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	digest := sha256.Sum256(append(salt, []byte(password)...))
	return hex.EncodeToString(digest[:]) == parts[1]
}
