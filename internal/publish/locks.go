// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"sync"

	"texpub-cli/internal/version"
)

// identityLocks serializes concurrent publishes of the same identity while
// leaving distinct identities fully parallel. The lock is held from version
// allocation through commit so two concurrent publishes of the same identity
// cannot allocate the same version number.
type identityLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newIdentityLocks() *identityLocks {
	return &identityLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for id and returns its release func. Lock entries
// are never removed; the identity space is small and bounded by the number
// of assets a session touches.
func (l *identityLocks) acquire(id version.Identity) func() {
	l.mu.Lock()
	m, ok := l.locks[id.String()]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id.String()] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
