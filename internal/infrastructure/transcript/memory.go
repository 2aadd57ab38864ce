// Package transcript provides storage backends for the conversation log.
package transcript

import (
	"context"
	"sync"
	"time"

	"voicebroker/internal/domain/transcript"
)

// MemoryStore is an in-memory transcript sink for development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]transcript.Record
}

// NewMemoryStore creates an in-memory transcript store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]transcript.Record)}
}

// Append adds a record to a session's transcript.
func (s *MemoryStore) Append(ctx context.Context, sessionID string, rec transcript.Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[sessionID] = append(s.records[sessionID], rec)
	return nil
}

// History returns a session's records in append order.
func (s *MemoryStore) History(ctx context.Context, sessionID string) ([]transcript.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.records[sessionID]
	out := make([]transcript.Record, len(recs))
	copy(out, recs)
	return out, nil
}
