package postgres

import (
	"context"

	"github.com/scamshield/authcore/internal/errs"
	"github.com/scamshield/authcore/internal/model"
)

// ResetRepo implements ResetTokenRepository using PostgreSQL.
type ResetRepo struct{ db *DB }

// NewResetRepo constructs a reset-token repository.
func NewResetRepo(db *DB) *ResetRepo { return &ResetRepo{db: db} }

// Create inserts a new reset token row.
func (r *ResetRepo) Create(ctx context.Context, t *model.PasswordResetToken) error {
	const q = `
INSERT INTO password_reset_tokens (id, user_id, email, code_hash, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Pool.Exec(ctx, q, t.ID, t.UserID, t.Email, t.CodeHash, t.ExpiresAt, t.CreatedAt)
	return err
}

// RecentByEmail returns up to limit tokens for the email, newest first.
func (r *ResetRepo) RecentByEmail(ctx context.Context, email string, limit int) ([]model.PasswordResetToken, error) {
	const q = `
SELECT id, user_id, email, code_hash, expires_at, used_at, created_at
FROM password_reset_tokens
WHERE email=$1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := r.db.Pool.Query(ctx, q, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PasswordResetToken
	for rows.Next() {
		var t model.PasswordResetToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Email, &t.CodeHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkUsed stamps used_at on an unused token. The used_at IS NULL guard makes
// redemption single-use even when two requests race on the same code.
func (r *ResetRepo) MarkUsed(ctx context.Context, id string) error {
	const q = `UPDATE password_reset_tokens SET used_at=now() WHERE id=$1 AND used_at IS NULL`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
