package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/scamshield/authcore/internal/errs"
	"github.com/scamshield/authcore/internal/model"
)

// CredentialRepo implements CredentialRepository using PostgreSQL.
type CredentialRepo struct{ db *DB }

// NewCredentialRepo constructs a credential repository.
func NewCredentialRepo(db *DB) *CredentialRepo { return &CredentialRepo{db: db} }

// GetByUserID selects the credential row for a user.
func (r *CredentialRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Credential, error) {
	const q = `
SELECT user_id, password_hash, salt, created_at
FROM credentials WHERE user_id=$1`
	var c model.Credential
	var salt *string
	if err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&c.UserID, &c.PasswordHash, &salt, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	if salt != nil {
		c.Salt = *salt
	}
	return &c, nil
}

// Upsert inserts or replaces the credential for a user in one statement, so
// concurrent change-password and reset-password never interleave partially.
func (r *CredentialRepo) Upsert(ctx context.Context, c *model.Credential) error {
	const q = `
INSERT INTO credentials (user_id, password_hash, salt, created_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (user_id)
DO UPDATE SET password_hash=EXCLUDED.password_hash, salt=EXCLUDED.salt, created_at=now()`
	var salt *string
	if c.Salt != "" {
		salt = &c.Salt
	}
	_, err := r.db.Pool.Exec(ctx, q, c.UserID, c.PasswordHash, salt)
	return err
}
