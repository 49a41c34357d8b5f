// Package common defines shared constants and sentinel errors used across
// fibkeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Guard errors.
	ErrorLock = errors.New("unable to lock state")

	// Sequence errors.
	ErrorOverflow = errors.New("addition overflow occurred")

	// Directory errors.
	ErrorUnknownUser   = errors.New("user does not exist for the given ID")
	ErrorSerialization = errors.New("failed to serialize user data")

	// Auth errors.
	ErrorInvalidCredentials = errors.New("invalid username/password")
	ErrorUnauthorized       = errors.New("unauthorized")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
