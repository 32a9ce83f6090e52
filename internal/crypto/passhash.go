// Package crypto implements credential hashing and secure token generation.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2-HMAC-SHA256 parameters for stored credentials.
const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 32 // 256-bit derived key
	SaltLen          = 16 // 128-bit random salt
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// NewSalt returns a fresh random salt for password hashing.
func NewSalt() ([]byte, error) {
	return RandBytes(SaltLen)
}

// HashPassword derives a PBKDF2-HMAC-SHA256 hash of password with salt,
// encoded as lowercase hex.
func HashPassword(password string, salt []byte) string {
	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return hex.EncodeToString(key)
}

// VerifyPassword verifies password against a stored hex hash and salt.
// Mismatch returns false, never an error.
func VerifyPassword(password, storedHash string, salt []byte) bool {
	got := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(got), []byte(storedHash)) == 1
}

// LegacyHash computes the pre-salting checksum of a raw password: a 31-based
// rolling hash over the UTF-8 bytes with int32 wraparound, hex-encoded.
// Retained only so legacy rows can be verified once and re-hashed with
// PBKDF2+salt on their next successful login.
func LegacyHash(password string) string {
	var h int32
	for _, b := range []byte(password) {
		h = h*31 + int32(b)
	}
	return fmt.Sprintf("%08x", uint32(h))
}

// VerifyLegacy verifies password against a legacy checksum hash.
func VerifyLegacy(password, storedHash string) bool {
	got := LegacyHash(password)
	return subtle.ConstantTimeCompare([]byte(got), []byte(storedHash)) == 1
}
