// Package audit provides the append-only security event log.
package audit

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/scamshield/authcore/internal/model"
	"github.com/scamshield/authcore/internal/repository"
)

// Security event types.
const (
	EventLoginSuccess         = "login_success"
	EventLoginFailed          = "login_failed"
	EventSignupSuccess        = "signup_success"
	EventSignupFailed         = "signup_failed"
	EventRateLimitExceeded    = "rate_limit_exceeded"
	EventPasswordChanged      = "password_changed"
	EventPasswordResetRequest = "password_reset_requested"
	EventPasswordReset        = "password_reset"
	EventAdminBootstrap       = "admin_bootstrap"
)

// Event severities.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Coarse static threat scores. This is a simple signal, not a model;
// callers may layer richer scoring on top.
const (
	ThreatScoreNone          = 0
	ThreatScoreFailedAttempt = 30
)

// Log records security events to the append-only store. Writes are
// best-effort: a failed append is logged and counted but never fails the
// authentication operation that produced it.
type Log struct {
	events repository.SecurityEventRepository
	logger *zap.Logger
}

// NewLog constructs an audit log over the given event store.
func NewLog(events repository.SecurityEventRepository, logger *zap.Logger) *Log {
	return &Log{events: events, logger: logger}
}

// Record appends one event. Failures flag the event as suspicious and carry
// the static failed-attempt threat score.
func (l *Log) Record(ctx context.Context, eventType string, userID *uuid.UUID, description string, success bool) {
	e := &model.SecurityEvent{
		ID:          ulid.Make().String(),
		Type:        eventType,
		Severity:    SeverityInfo,
		Description: description,
		Suspicious:  !success,
		ThreatScore: ThreatScoreNone,
		UserID:      userID,
		CreatedAt:   time.Now(),
	}
	if !success {
		e.Severity = SeverityWarning
		e.ThreatScore = ThreatScoreFailedAttempt
	}

	securityEventsTotal.WithLabelValues(eventType, boolLabel(e.Suspicious)).Inc()

	if err := l.events.Append(ctx, e); err != nil {
		appendFailuresTotal.Inc()
		l.logger.Error("audit append failed",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
