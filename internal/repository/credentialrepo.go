package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/scamshield/authcore/internal/model"
)

// CredentialRepository stores password hashes, one row per user.
type CredentialRepository interface {
	// GetByUserID loads the credential for a user. Returns ErrNotFound for
	// passwordless accounts awaiting their first claim.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Credential, error)

	// Upsert inserts or wholesale-replaces the credential for a user.
	// Used on signup, claim, password change, reset, and legacy upgrade.
	Upsert(ctx context.Context, c *model.Credential) error
}
