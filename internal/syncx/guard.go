// Package syncx provides poisoning guards around sync.Mutex and sync.RWMutex.
//
// A guard becomes poisoned when a panic escapes an exclusive section. The
// panic is turned into an error for the caller, and every later acquisition
// fails with common.ErrorLock until ClearPoison is called.
package syncx

import (
	"fmt"
	"sync"

	"github.com/dmitrijs2005/fibkeeper/internal/common"
)

// Mutex is an exclusive-only guard.
type Mutex struct {
	mu       sync.Mutex
	poisoned bool
}

// Do runs fn while holding the lock.
func (m *Mutex) Do(fn func() error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned {
		return common.ErrorLock
	}

	defer func() {
		if r := recover(); r != nil {
			m.poisoned = true
			err = fmt.Errorf("%w: panic in critical section: %v", common.ErrorLock, r)
		}
	}()

	return fn()
}

// Poisoned reports whether a previous holder panicked.
func (m *Mutex) Poisoned() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.poisoned
}

// ClearPoison marks the guard healthy again.
func (m *Mutex) ClearPoison() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poisoned = false
}

// RWMutex is a multi-reader/single-writer guard. Only writers poison it.
type RWMutex struct {
	mu       sync.RWMutex
	poisoned bool
}

// Read runs fn under a shared lock. A panic in fn is returned as
// common.ErrorInternal and leaves the guard healthy.
func (m *RWMutex) Read(fn func() error) (err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.poisoned {
		return common.ErrorLock
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic in read section: %v", common.ErrorInternal, r)
		}
	}()

	return fn()
}

// Write runs fn under the exclusive lock.
func (m *RWMutex) Write(fn func() error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned {
		return common.ErrorLock
	}

	defer func() {
		if r := recover(); r != nil {
			m.poisoned = true
			err = fmt.Errorf("%w: panic in critical section: %v", common.ErrorLock, r)
		}
	}()

	return fn()
}

// Poisoned reports whether a previous writer panicked.
func (m *RWMutex) Poisoned() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.poisoned
}

// ClearPoison marks the guard healthy again.
func (m *RWMutex) ClearPoison() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poisoned = false
}
