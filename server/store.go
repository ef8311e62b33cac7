package server

import (
	"errors"
	"sync"
	"time"

	"github.com/spektr-org/gapminder/dashboard"
)

// ErrTooManySessions is returned when the store is full after eviction.
var ErrTooManySessions = errors.New("too many sessions")

// SessionStore keeps live sessions in memory and drops the ones idle for
// longer than the TTL. Sessions are destroyed with their entry; nothing
// is persisted.
type SessionStore struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*storeEntry
}

type storeEntry struct {
	session  *dashboard.Session
	lastSeen time.Time
}

// NewSessionStore creates a store. ttl <= 0 disables eviction and
// max <= 0 removes the size cap.
func NewSessionStore(ttl time.Duration, max int) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		max:      max,
		now:      time.Now,
		sessions: make(map[string]*storeEntry),
	}
}

// Add stores a session, evicting idle ones first when full.
func (s *SessionStore) Add(sess *dashboard.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.sessions) >= s.max {
		s.sweepLocked()
		if len(s.sessions) >= s.max {
			return ErrTooManySessions
		}
	}
	s.sessions[sess.ID] = &storeEntry{session: sess, lastSeen: s.now()}
	return nil
}

// Get returns a live session and refreshes its idle timer.
func (s *SessionStore) Get(id string) (*dashboard.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastSeen = s.now()
	return e.session, true
}

// Delete drops a session; it reports whether one existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Sweep evicts idle sessions and returns how many were dropped.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) sweepLocked() int {
	n := 0
	for id, e := range s.sessions {
		if s.expired(e) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *SessionStore) expired(e *storeEntry) bool {
	return s.ttl > 0 && s.now().Sub(e.lastSeen) > s.ttl
}
