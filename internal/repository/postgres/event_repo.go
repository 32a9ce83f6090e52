package postgres

import (
	"context"

	"github.com/scamshield/authcore/internal/model"
)

// EventRepo implements SecurityEventRepository using PostgreSQL.
// The table is append-only; no update or delete statements exist here.
type EventRepo struct{ db *DB }

// NewEventRepo constructs a security-event repository.
func NewEventRepo(db *DB) *EventRepo { return &EventRepo{db: db} }

// Append inserts one security event.
func (r *EventRepo) Append(ctx context.Context, e *model.SecurityEvent) error {
	const q = `
INSERT INTO security_events (id, event_type, severity, description, is_suspicious, threat_score, user_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Pool.Exec(ctx, q,
		e.ID, e.Type, e.Severity, e.Description, e.Suspicious, e.ThreatScore, e.UserID, e.CreatedAt)
	return err
}
