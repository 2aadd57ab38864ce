package session

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound is returned when a session is not found or has
	// passed its idle TTL.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyExists is returned when trying to create a session
	// that already exists.
	ErrSessionAlreadyExists = errors.New("session already exists")
	// ErrStorageUnavailable wraps backend failures so callers can tell a
	// missing session from a broken store. Never silently swallowed.
	ErrStorageUnavailable = errors.New("session storage unavailable")
)

// Store defines the interface for session storage.
//
// Get touches LastActiveAt as a side effect; the read-modify step is atomic
// per session id. Operations on different session ids are safe to call
// concurrently; operations on the same id serialize.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID and updates its LastActiveAt.
	// The touch is best-effort: if the write fails after a successful
	// read, implementations log and return the session anyway.
	Get(ctx context.Context, id string) (*Session, error)

	// Update merges metadata into an existing session.
	Update(ctx context.Context, id string, metadata map[string]string) (*Session, error)

	// Delete removes a session by ID.
	Delete(ctx context.Context, id string) error
}
