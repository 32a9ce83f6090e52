package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/scamshield/authcore/internal/model"
)

// SessionRepository stores opaque bearer sessions.
type SessionRepository interface {
	// Create inserts a new session row.
	Create(ctx context.Context, s *model.Session) error

	// GetByToken loads a session by its token. Returns ErrNotFound if absent.
	GetByToken(ctx context.Context, token string) (*model.Session, error)

	// Delete removes a single session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteAllForUser removes every session for a user. A non-empty
	// exceptToken preserves that one session (used by change-password to
	// keep the caller signed in).
	DeleteAllForUser(ctx context.Context, userID uuid.UUID, exceptToken string) error
}
