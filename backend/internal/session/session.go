// Package session tracks per-user chat state: locale, the screen last
// shown, and the payload last rendered (for redundant re-render
// suppression). Like the registry, it is volatile by design.
package session

import (
	"sync"

	"github.com/user/tonpilot/backend/internal/nav"
)

type userSession struct {
	mu          sync.Mutex
	locale      string
	screen      nav.Screen
	lastPayload nav.Payload
	hasPayload  bool
}

// Store maps user ids to sessions with per-user mutual exclusion.
type Store struct {
	mu            sync.RWMutex
	sessions      map[string]*userSession
	defaultLocale string
}

// NewStore creates an empty session store; unseen users start on the
// Welcome screen in defaultLocale.
func NewStore(defaultLocale string) *Store {
	return &Store{
		sessions:      make(map[string]*userSession),
		defaultLocale: defaultLocale,
	}
}

func (s *Store) get(userID string) *userSession {
	s.mu.RLock()
	u := s.sessions[userID]
	s.mu.RUnlock()
	if u != nil {
		return u
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if u = s.sessions[userID]; u == nil {
		u = &userSession{locale: s.defaultLocale, screen: nav.Welcome()}
		s.sessions[userID] = u
	}
	return u
}

// Snapshot returns the user's current locale and screen.
func (s *Store) Snapshot(userID string) (locale string, screen nav.Screen) {
	u := s.get(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.locale, u.screen
}

// SetLocale persists the user's language choice.
func (s *Store) SetLocale(userID, code string) {
	u := s.get(userID)
	u.mu.Lock()
	u.locale = code
	u.mu.Unlock()
}

// Commit records a freshly rendered screen. It returns false, without
// updating anything, when the payload equals the previous render: the
// caller should acknowledge instead of re-rendering. The stored screen is
// stripped of its transient notice so later re-renders never repeat it.
func (s *Store) Commit(userID string, screen nav.Screen, payload nav.Payload) bool {
	u := s.get(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.hasPayload && u.lastPayload.Equal(payload) {
		return false
	}
	u.screen = screen.Stripped()
	u.lastPayload = payload
	u.hasPayload = true
	return true
}
