package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a [MemoryStore]. ttl <= 0 means [DefaultTTL]; a nil now
// means time.Now.
func NewMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		ttl:      normalizeTTL(ttl),
		now:      normalizeClock(now),
	}
}

// Issue implements [Store].
func (s *MemoryStore) Issue(_ context.Context, clientKey string, grant Grant) (*Session, error) {
	sess, err := newSession(clientKey, grant, s.now(), s.ttl)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[clientKey] = *sess
	s.mu.Unlock()

	return sess, nil
}

// Verify implements [Store].
func (s *MemoryStore) Verify(_ context.Context, clientKey string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[clientKey]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	if sess.Expired(s.now()) {
		s.mu.Lock()
		// A concurrent login may have replaced the entry after the read.
		if cur, ok := s.sessions[clientKey]; ok && cur.Token == sess.Token {
			delete(s.sessions, clientKey)
		}
		s.mu.Unlock()
		return nil, ErrSessionExpired
	}

	return &sess, nil
}

// Revoke implements [Store].
func (s *MemoryStore) Revoke(_ context.Context, clientKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[clientKey]
	delete(s.sessions, clientKey)
	return ok, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) (time.Duration, error) {
	return 0, nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
