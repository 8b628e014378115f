// Package services – SessionService
//
// This file implements the opaque-token session store: a random token maps
// to a username for as long as the session stays fresh. Tokens are UUIDs,
// rows live in the database, and every successful resolution refreshes the
// access time so active sessions never expire under a user.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/repo"
)

// SessionService issues, resolves, and revokes login sessions.
//
// TTL bounds session idleness; Resolve rejects and deletes sessions idle for
// longer. Now is a test seam; when nil, time.Now is used.
type SessionService struct {
	DB  *gorm.DB
	TTL time.Duration
	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create opens a session for username and returns its opaque token.
func (s *SessionService) Create(ctx context.Context, username string) (string, error) {
	sess := &domain.Session{
		Token:    uuid.NewString(),
		Username: username,
		ATime:    s.now().UTC(),
	}
	if err := repo.CreateSession(ctx, s.DB, sess); err != nil {
		return "", err
	}
	return sess.Token, nil
}

// Resolve maps a token to the logged-in username, refreshing the session's
// access time. Unknown and expired tokens are ErrNotFound; expired rows are
// removed on sight.
func (s *SessionService) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotFound
	}
	sess, err := repo.GetSession(ctx, s.DB, token)
	if err != nil {
		return "", mapNotFound(err)
	}
	now := s.now().UTC()
	if s.TTL > 0 && now.Sub(sess.ATime) > s.TTL {
		_ = repo.DeleteSession(ctx, s.DB, token)
		return "", ErrNotFound
	}
	if err := repo.TouchSession(ctx, s.DB, token, now); err != nil {
		return "", err
	}
	return sess.Username, nil
}

// Clear revokes one session. Unknown tokens are fine.
func (s *SessionService) Clear(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return repo.DeleteSession(ctx, s.DB, token)
}

// Sweep drops sessions idle beyond the TTL and returns how many went.
// Intended for a periodic background call from the server process.
func (s *SessionService) Sweep(ctx context.Context) (int64, error) {
	if s.TTL <= 0 {
		return 0, errors.New("session TTL not configured")
	}
	return repo.DeleteSessionsIdleSince(ctx, s.DB, s.now().UTC().Add(-s.TTL))
}
