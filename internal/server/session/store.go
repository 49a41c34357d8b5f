// Package session tracks which clients have logged in. A session is
// Anonymous until Manager.Login binds a principal to it.
package session

import (
	"time"

	"github.com/dmitrijs2005/fibkeeper/internal/syncx"
)

// Session is the server-side half of a login.
type Session struct {
	UserID    int64
	AuthHash  []byte
	ExpiresAt time.Time
}

// Store keeps sessions in memory, keyed by session id.
type Store struct {
	guard    syncx.RWMutex
	sessions map[string]Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]Session)}
}

// Put creates or replaces the session stored under id.
func (s *Store) Put(id string, sess Session) error {
	return s.guard.Write(func() error {
		s.sessions[id] = sess
		return nil
	})
}

// Get returns the session under id unless it is missing or expired at now.
func (s *Store) Get(id string, now time.Time) (Session, bool, error) {
	var (
		sess Session
		ok   bool
	)
	err := s.guard.Read(func() error {
		sess, ok = s.sessions[id]
		if ok && !now.Before(sess.ExpiresAt) {
			ok = false
		}
		return nil
	})
	return sess, ok, err
}

// Delete removes id. Unknown ids are ignored.
func (s *Store) Delete(id string) error {
	return s.guard.Write(func() error {
		delete(s.sessions, id)
		return nil
	})
}

// Sweep drops every session expired at now and reports how many went.
func (s *Store) Sweep(now time.Time) (int, error) {
	removed := 0
	err := s.guard.Write(func() error {
		for id, sess := range s.sessions {
			if !now.Before(sess.ExpiresAt) {
				delete(s.sessions, id)
				removed++
			}
		}
		return nil
	})
	return removed, err
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.guard.Read(func() error {
		n = len(s.sessions)
		return nil
	})
	return n, err
}
