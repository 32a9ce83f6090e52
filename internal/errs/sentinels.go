// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Repository-level sentinels.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")
)

// Gateway-level sentinels. The HTTP layer maps these to the user-facing
// messages; internal layers never leak which check actually failed.
var (
	// ErrInvalidCredentials covers unknown user and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPasswordNotSet indicates a pre-existing account without a credential;
	// the account can be claimed via sign-up.
	ErrPasswordNotSet = errors.New("password not set")

	// ErrAccountExists indicates sign-up against an account that already has a credential.
	ErrAccountExists = errors.New("account already exists")

	// ErrRateLimited indicates the attempt ceiling for the current window was reached.
	ErrRateLimited = errors.New("rate limited")

	// ErrSessionExpired indicates a missing, revoked, or expired session token
	// on an operation that requires one.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidResetCode covers wrong, expired, and already-used reset codes alike.
	ErrInvalidResetCode = errors.New("invalid reset code")

	// ErrInvalidEmail indicates a malformed email address.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrWeakPassword indicates the password fails the minimum-length policy.
	ErrWeakPassword = errors.New("weak password")
)
