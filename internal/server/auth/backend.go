// Package auth validates credentials against the single configured account
// and signs the session tokens that remember a successful login.
package auth

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"

	"github.com/dmitrijs2005/fibkeeper/internal/common"
	"github.com/dmitrijs2005/fibkeeper/internal/cryptox"
)

// PrincipalID is the id of the only account the backend knows.
const PrincipalID int64 = 1

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Principal is the authenticated identity bound to a session.
type Principal struct {
	ID       int64
	Username string

	sessionAuthHash []byte
}

// SessionAuthHash returns the token a stored session must present to stay
// valid. It is derived from the password hash, so changing the password
// invalidates every existing session.
func (p Principal) SessionAuthHash() []byte {
	return bytes.Clone(p.sessionAuthHash)
}

// Backend accepts exactly one username/password pair.
type Backend struct {
	principal    Principal
	passwordHash []byte
}

// NewBackend builds a backend for username whose password has the given
// bcrypt hash. secret salts the derived session token.
func NewBackend(username string, passwordHash []byte, secret []byte) (*Backend, error) {
	if username == "" {
		return nil, errors.New("auth: empty username")
	}
	if !cryptox.ValidHash(passwordHash) {
		return nil, errors.New("auth: password hash is not a bcrypt hash")
	}

	return &Backend{
		principal: Principal{
			ID:              PrincipalID,
			Username:        username,
			sessionAuthHash: cryptox.DeriveSessionKey(passwordHash, secret),
		},
		passwordHash: bytes.Clone(passwordHash),
	}, nil
}

// Authenticate returns the principal when creds match exactly. Every
// mismatch yields common.ErrorInvalidCredentials without saying which part
// was wrong.
func (b *Backend) Authenticate(ctx context.Context, creds Credentials) (Principal, error) {
	userOK := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(b.principal.Username)) == 1
	// always run bcrypt so timing does not reveal a username match
	password := []byte(creds.Password)
	passOK := cryptox.CheckPassword(b.passwordHash, password)
	common.WipeByteArray(password)

	if !userOK || !passOK {
		return Principal{}, common.ErrorInvalidCredentials
	}

	return b.principal, nil
}

// Resolve re-hydrates the principal stored in a session.
func (b *Backend) Resolve(ctx context.Context, id int64) (Principal, error) {
	if id != b.principal.ID {
		return Principal{}, common.ErrorUnknownUser
	}
	return b.principal, nil
}
