package service

import (
	"regexp"
	"strings"

	"github.com/scamshield/authcore/internal/errs"
)

// MinPasswordLength is the only password policy this core enforces.
const MinPasswordLength = 8

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// All storage and lookups go through this, so case variants of one address
// always land on the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the normalized address against a permissive shape
// check. Deliverability is out of scope here.
func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return errs.ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the minimum-length policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errs.ErrWeakPassword
	}
	return nil
}
