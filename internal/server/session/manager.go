package session

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fibkeeper/internal/common"
	"github.com/dmitrijs2005/fibkeeper/internal/logging"
	"github.com/dmitrijs2005/fibkeeper/internal/server/auth"
	"github.com/google/uuid"
)

// Resolver looks a principal up by id on every authenticated request.
type Resolver interface {
	Resolve(ctx context.Context, id int64) (auth.Principal, error)
}

// Manager binds principals to sessions and carries the session id to the
// client in a signed cookie.
type Manager struct {
	store    *Store
	resolver Resolver
	secret   []byte
	validity time.Duration
	secure   bool
	now      func() time.Time
}

func NewManager(store *Store, resolver Resolver, secretKey string, validity time.Duration, secure bool) *Manager {
	return &Manager{
		store:    store,
		resolver: resolver,
		secret:   []byte(secretKey),
		validity: validity,
		secure:   secure,
		now:      time.Now,
	}
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// sessionID extracts and verifies the session id carried by r.
func (m *Manager) sessionID(r *http.Request) (string, *auth.Claims, error) {
	c, err := r.Cookie(common.SessionCookieName)
	if err != nil {
		return "", nil, common.ErrorUnauthorized
	}
	claims, err := auth.ParseToken(c.Value, m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}
	return claims.ID, claims, nil
}

// Login moves the client from Anonymous to Authenticated as p. Any session
// the request already carried is dropped so ids are never reused across a
// login.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, p auth.Principal) error {
	if old, _, err := m.sessionID(r); err == nil {
		if err := m.store.Delete(old); err != nil {
			return err
		}
	}

	id := uuid.NewString()
	if err := m.store.Put(id, Session{
		UserID:    p.ID,
		AuthHash:  p.SessionAuthHash(),
		ExpiresAt: m.now().Add(m.validity),
	}); err != nil {
		return err
	}

	token, err := auth.GenerateToken(id, p.ID, m.secret, m.validity)
	if err != nil {
		_ = m.store.Delete(id)
		return err
	}

	http.SetCookie(w, m.cookie(token, int(m.validity.Seconds())))
	return nil
}

// Authenticate returns the principal bound to r's session. Every failure,
// from a missing cookie to a stale auth hash, is reported as
// common.ErrorUnauthorized; store failures keep their own error.
func (m *Manager) Authenticate(r *http.Request) (auth.Principal, error) {
	id, claims, err := m.sessionID(r)
	if err != nil {
		return auth.Principal{}, err
	}

	sess, ok, err := m.store.Get(id, m.now())
	if err != nil {
		return auth.Principal{}, err
	}
	if !ok || sess.UserID != claims.UserID {
		return auth.Principal{}, common.ErrorUnauthorized
	}

	p, err := m.resolver.Resolve(r.Context(), sess.UserID)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}

	if subtle.ConstantTimeCompare(p.SessionAuthHash(), sess.AuthHash) != 1 {
		_ = m.store.Delete(id)
		return auth.Principal{}, common.ErrorUnauthorized
	}

	return p, nil
}

// Logout forgets r's session, if any, and expires the cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	if id, _, err := m.sessionID(r); err == nil {
		if err := m.store.Delete(id); err != nil {
			return err
		}
	}
	http.SetCookie(w, m.cookie("", -1))
	return nil
}

// RunCleanup sweeps expired sessions every interval until ctx is done. A
// non-positive interval disables sweeping; expired sessions are still
// rejected on lookup.
func (m *Manager) RunCleanup(ctx context.Context, interval time.Duration, logger logging.Logger) {
	if interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.store.Sweep(m.now())
			if err != nil {
				logger.Error(ctx, "session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}
