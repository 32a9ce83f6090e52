// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Role is the privilege level of a user account.
type Role string

// Account roles. Superadmin is never assigned by this core; it exists so
// externally provisioned accounts keep their privileges through auth checks.
const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Elevated reports whether the role carries admin privileges.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// User is an identity record. Email is stored normalized to lowercase and is
// unique. Users are soft-deleted only; this core never removes rows.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
	DeletedAt *time.Time
}

// Credential holds the password hash for a user, one-to-one with User.
// Salt is empty for legacy rows written before salting; such rows are
// upgraded transparently on the next successful login.
type Credential struct {
	UserID       uuid.UUID
	PasswordHash string // lowercase hex
	Salt         string // lowercase hex; "" means legacy scheme
	CreatedAt    time.Time
}

// Legacy reports whether the credential was written by the pre-salting scheme.
func (c *Credential) Legacy() bool { return c.Salt == "" }

// Session is an opaque bearer token bound to a user. Possession of the token
// is equivalent to authentication until expiry or revocation.
type Session struct {
	Token     string // 64-char lowercase hex, 256-bit
	UserID    uuid.UUID
	Temporary bool // short-lived internal handoff session
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ExpiredAt reports whether the session is expired at the given instant.
func (s *Session) ExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// RateLimitWindow counts attempts for one (identifier, endpoint) pair within
// a fixed window. At most one window per key is live at a time; a new window
// is opened once the previous WindowEnd has passed.
type RateLimitWindow struct {
	Identifier   string
	Endpoint     string
	WindowStart  time.Time
	WindowEnd    time.Time
	RequestCount int
	AttemptLimit int
	Exceeded     bool
}

// PasswordResetToken is a single-use numeric reset code, stored as a digest.
// CodeHash is derived from email and code, not from the credential hasher:
// the code is short-lived and single-use, not a long-term credential.
type PasswordResetToken struct {
	ID        string // ULID
	UserID    uuid.UUID
	Email     string
	CodeHash  string // lowercase hex SHA-256
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token is unused and unexpired at the given instant.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}

// SecurityEvent is one immutable row of the append-only audit log.
type SecurityEvent struct {
	ID          string // ULID, time-ordered
	Type        string
	Severity    string
	Description string
	Suspicious  bool
	ThreatScore int
	UserID      *uuid.UUID
	CreatedAt   time.Time
}
