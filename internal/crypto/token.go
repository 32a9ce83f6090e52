package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Token parameters.
const (
	SessionTokenBytes = 32        // 32 bytes = 64 hex chars, 256-bit entropy
	resetCodeModulus  = 1_000_000 // 6 decimal digits
)

// NewSessionToken returns an opaque bearer token: 32 random bytes from a
// CSPRNG, hex-encoded. No timestamp, counter, or user data is embedded.
func NewSessionToken() (string, error) {
	b, err := RandBytes(SessionTokenBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewResetCode returns a 6-digit zero-padded password-reset code drawn from
// a CSPRNG and reduced modulo 1,000,000, kept short so it stays human-enterable.
func NewResetCode() (string, error) {
	b, err := RandBytes(4)
	if err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(b) % resetCodeModulus
	return fmt.Sprintf("%06d", n), nil
}

// HashResetCode derives the storage digest for a reset code. The code is a
// short-lived single-use secret, not a long-term credential, so a plain
// SHA-256 over email and code is used instead of PBKDF2.
func HashResetCode(email, code string) string {
	sum := sha256.Sum256([]byte(email + ":" + code))
	return hex.EncodeToString(sum[:])
}
