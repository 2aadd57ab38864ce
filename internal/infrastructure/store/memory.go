package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"voicebroker/internal/domain/session"
)

// MemoryStore is a mutex-based in-memory session store with idle expiry.
// Thread-safe via sync.Mutex; the Get touch mutates LastActiveAt under the
// same lock, so per-session read-modify is atomic.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	ttl      time.Duration // idle TTL; 0 disables expiry
	log      zerolog.Logger
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore(ttl time.Duration, log zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*session.Session),
		ttl:      ttl,
		log:      log.With().Str("component", "session-store").Logger(),
	}
}

// Create stores a new session.
func (s *MemoryStore) Create(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sess.ID]; exists {
		return session.ErrSessionAlreadyExists
	}

	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

// Get retrieves a session by ID, updating LastActiveAt. A session whose idle
// time exceeds the TTL is removed and reported as not found.
func (s *MemoryStore) Get(ctx context.Context, id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}

	now := time.Now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, session.ErrSessionNotFound
	}

	sess.LastActiveAt = now
	cp := *sess
	return &cp, nil
}

// Update merges metadata into an existing session.
func (s *MemoryStore) Update(ctx context.Context, id string, metadata map[string]string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess, time.Now()) {
		delete(s.sessions, id)
		return nil, session.ErrSessionNotFound
	}

	if sess.Metadata == nil {
		sess.Metadata = make(map[string]string, len(metadata))
	}
	for k, v := range metadata {
		sess.Metadata[k] = v
	}

	cp := *sess
	return &cp, nil
}

// Delete removes a session by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return session.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// PurgeExpired deletes every session past its idle TTL and returns the count.
func (s *MemoryStore) PurgeExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	purged := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged, nil
}

func (s *MemoryStore) expired(sess *session.Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.LastActiveAt) > s.ttl
}
