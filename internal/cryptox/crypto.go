// Package cryptox wraps the password hashing and key derivation primitives
// used by the auth backend.
package cryptox

import (
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is the longest password bcrypt can hash without
// silently truncating it.
const MaxPasswordLength = 72

// ErrPasswordTooLong is returned by HashPassword for inputs over
// MaxPasswordLength bytes.
var ErrPasswordTooLong = errors.New("password longer than 72 bytes")

// HashPassword returns the bcrypt hash of password at the given cost.
// Use bcrypt.DefaultCost outside tests.
func HashPassword(password []byte, cost int) ([]byte, error) {
	if len(password) > MaxPasswordLength {
		return nil, ErrPasswordTooLong
	}
	return bcrypt.GenerateFromPassword(password, cost)
}

// CheckPassword reports whether password matches the bcrypt hash exactly.
// Passwords bcrypt would truncate never match.
func CheckPassword(hash, password []byte) bool {
	if len(password) > MaxPasswordLength {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, password) == nil
}

// ValidHash reports whether hash is a well-formed bcrypt hash.
func ValidHash(hash []byte) bool {
	_, err := bcrypt.Cost(hash)
	return err == nil
}

// DeriveSessionKey stretches material into a 32-byte key with Argon2id.
// The result is deterministic for a given (material, salt) pair.
func DeriveSessionKey(material, salt []byte) []byte {
	return argon2.IDKey(material, salt, 1, 64*1024, 4, 32)
}
