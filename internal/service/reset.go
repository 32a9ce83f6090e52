package service

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/oklog/ulid/v2"

	pkgcrypto "github.com/scamshield/authcore/internal/crypto"
	"github.com/scamshield/authcore/internal/errs"
	"github.com/scamshield/authcore/internal/model"
	"github.com/scamshield/authcore/internal/repository"
)

// Reset-code policy.
const (
	// ResetCodeTTL is how long a reset code stays redeemable.
	ResetCodeTTL = 15 * time.Minute
	// resetScanLimit bounds the redemption scan to the most recent codes
	// for the address, so stale history cannot be replayed.
	resetScanLimit = 10
)

// PasswordResets issues and redeems single-use numeric reset codes.
type PasswordResets struct {
	resets      repository.ResetTokenRepository
	users       repository.UserRepository
	credentials repository.CredentialRepository
	sessions    *Sessions
	codeTTL     time.Duration
}

// NewPasswordResets constructs the reset service. A non-positive codeTTL
// falls back to ResetCodeTTL.
func NewPasswordResets(
	resets repository.ResetTokenRepository,
	users repository.UserRepository,
	credentials repository.CredentialRepository,
	sessions *Sessions,
	codeTTL time.Duration,
) *PasswordResets {
	if codeTTL <= 0 {
		codeTTL = ResetCodeTTL
	}
	return &PasswordResets{resets: resets, users: users, credentials: credentials, sessions: sessions, codeTTL: codeTTL}
}

// Request issues a reset code for the address. When no live account exists
// it returns an empty code and no error, so callers can answer identically
// for known and unknown addresses. The email must be normalized.
func (s *PasswordResets) Request(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	code, err := pkgcrypto.NewResetCode()
	if err != nil {
		return "", err
	}
	now := time.Now()
	t := &model.PasswordResetToken{
		ID:        ulid.Make().String(),
		UserID:    u.ID,
		Email:     email,
		CodeHash:  pkgcrypto.HashResetCode(email, code),
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	}
	if err := s.resets.Create(ctx, t); err != nil {
		return "", err
	}
	return code, nil
}

// Redeem consumes a reset code and replaces the account credential. On
// success it revokes every session of the user and returns the user ID so
// the caller can mint a fresh handoff session. Wrong, expired, and
// already-used codes all surface as ErrInvalidResetCode.
func (s *PasswordResets) Redeem(ctx context.Context, email, code, newPassword string) (uuid.UUID, error) {
	if err := ValidatePassword(newPassword); err != nil {
		return uuid.Nil, err
	}

	recent, err := s.resets.RecentByEmail(ctx, email, resetScanLimit)
	if err != nil {
		return uuid.Nil, err
	}

	digest := pkgcrypto.HashResetCode(email, code)
	now := time.Now()
	var match *model.PasswordResetToken
	for i := range recent {
		t := &recent[i]
		if t.Usable(now) && subtle.ConstantTimeCompare([]byte(t.CodeHash), []byte(digest)) == 1 {
			match = t
			break
		}
	}
	if match == nil {
		return uuid.Nil, errs.ErrInvalidResetCode
	}

	// Claim the token first. A concurrent redeem of the same code loses
	// here and gets the same generic error as a wrong code.
	if err := s.resets.MarkUsed(ctx, match.ID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return uuid.Nil, errs.ErrInvalidResetCode
		}
		return uuid.Nil, err
	}

	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		return uuid.Nil, err
	}
	cred := &model.Credential{
		UserID:       match.UserID,
		PasswordHash: pkgcrypto.HashPassword(newPassword, salt),
		Salt:         hex.EncodeToString(salt),
		CreatedAt:    now,
	}
	if err := s.credentials.Upsert(ctx, cred); err != nil {
		return uuid.Nil, err
	}

	if err := s.sessions.RevokeAllForUser(ctx, match.UserID, ""); err != nil {
		return uuid.Nil, err
	}
	return match.UserID, nil
}
