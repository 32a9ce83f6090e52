package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/scamshield/authcore/internal/errs"
	"github.com/scamshield/authcore/internal/model"
)

// SessionRepo implements SessionRepository using PostgreSQL.
type SessionRepo struct{ db *DB }

// NewSessionRepo constructs a session repository.
func NewSessionRepo(db *DB) *SessionRepo { return &SessionRepo{db: db} }

// Create inserts a new session row.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `
INSERT INTO sessions (token, user_id, temporary, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Pool.Exec(ctx, q, s.Token, s.UserID, s.Temporary, s.CreatedAt, s.ExpiresAt)
	return err
}

// GetByToken selects a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	const q = `
SELECT token, user_id, temporary, created_at, expires_at
FROM sessions WHERE token=$1`
	var s model.Session
	if err := r.db.Pool.QueryRow(ctx, q, token).Scan(&s.Token, &s.UserID, &s.Temporary, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Delete removes a single session; removing an unknown token is a no-op.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE token=$1`, token)
	return err
}

// DeleteAllForUser removes every session for a user, optionally keeping one.
func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID uuid.UUID, exceptToken string) error {
	if exceptToken == "" {
		_, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE user_id=$1`, userID)
		return err
	}
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE user_id=$1 AND token<>$2`, userID, exceptToken)
	return err
}
