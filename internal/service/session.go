package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/scamshield/authcore/internal/crypto"
	"github.com/scamshield/authcore/internal/errs"
	"github.com/scamshield/authcore/internal/model"
	"github.com/scamshield/authcore/internal/repository"
)

// Session lifetimes.
const (
	// DefaultSessionTTL is the lifetime of a regular sign-in session.
	DefaultSessionTTL = 7 * 24 * time.Hour
	// TemporarySessionTTL is the lifetime of a short internal handoff
	// session, e.g. the one minted right after a password reset.
	TemporarySessionTTL = 60 * time.Second
)

// Sessions manages opaque bearer sessions. Expiry is lazy: expired rows are
// removed when a lookup trips over them, never by a background sweeper.
type Sessions struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
}

// NewSessions constructs the session service.
func NewSessions(sessions repository.SessionRepository, users repository.UserRepository) *Sessions {
	return &Sessions{sessions: sessions, users: users}
}

// Create mints a session for the user and returns its token.
func (s *Sessions) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration, temporary bool) (string, error) {
	token, err := pkgcrypto.NewSessionToken()
	if err != nil {
		return "", err
	}
	now := time.Now()
	sess := &model.Session{
		Token:     token,
		UserID:    userID,
		Temporary: temporary,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a token to its live user. An unknown, expired, or orphaned
// token resolves to (nil, nil); callers decide whether that is an error.
// Expired sessions are deleted on the way out.
func (s *Sessions) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.sessions.GetByToken(ctx, token)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sess.ExpiredAt(time.Now()) {
		if derr := s.sessions.Delete(ctx, token); derr != nil {
			return nil, derr
		}
		return nil, nil
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		// User was soft-deleted after the session was minted.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Revoke deletes one session. Revoking an unknown token is a no-op.
func (s *Sessions) Revoke(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// RevokeAllForUser deletes every session of the user except the given token.
// Pass an empty exceptToken to revoke everything.
func (s *Sessions) RevokeAllForUser(ctx context.Context, userID uuid.UUID, exceptToken string) error {
	return s.sessions.DeleteAllForUser(ctx, userID, exceptToken)
}
