package repository

import (
	"context"

	"github.com/scamshield/authcore/internal/model"
)

// SecurityEventRepository is the append-only audit sink. Rows are never
// mutated or deleted by this core.
type SecurityEventRepository interface {
	// Append inserts one security event.
	Append(ctx context.Context, e *model.SecurityEvent) error
}
