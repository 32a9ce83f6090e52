// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/scamshield/authcore/internal/model"
)

// UserRepository provides access to identity records.
type UserRepository interface {
	// Create inserts a new user. The stored role is decided atomically with
	// the insert: the first-ever user is granted admin, everyone else gets
	// the user role. Returns ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, u *model.User) error

	// GetByID loads a live (not soft-deleted) user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail loads a live user by normalized email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// PromoteIfNoAdmin grants the user admin if and only if no admin or
	// superadmin exists anywhere. Reports whether a promotion happened.
	// This is the one-time recovery escape hatch, not a general promotion.
	PromoteIfNoAdmin(ctx context.Context, id uuid.UUID) (bool, error)
}
