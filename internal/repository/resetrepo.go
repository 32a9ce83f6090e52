package repository

import (
	"context"

	"github.com/scamshield/authcore/internal/model"
)

// ResetTokenRepository stores password-reset codes as digests.
type ResetTokenRepository interface {
	// Create inserts a new reset token row.
	Create(ctx context.Context, t *model.PasswordResetToken) error

	// RecentByEmail returns up to limit tokens for the email, newest first.
	RecentByEmail(ctx context.Context, email string, limit int) ([]model.PasswordResetToken, error)

	// MarkUsed stamps used_at on an unused token. Returns ErrNotFound when
	// the token is missing or was already redeemed, so redemption stays
	// single-use even under concurrent attempts.
	MarkUsed(ctx context.Context, id string) error
}
