package session

import "time"

// Session is a durable browser conversation unit bound to a tenant. It is
// identity only: the live upstream connection is tracked separately by the
// bridge cache and has its own, much shorter lifetime.
type Session struct {
	ID           string            `json:"session_id"`
	ClientID     string            `json:"client_id"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActiveAt time.Time         `json:"last_active_at"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// NewSession builds a session with creation and activity timestamps set to now.
func NewSession(id, clientID string, metadata map[string]string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		ClientID:     clientID,
		CreatedAt:    now,
		LastActiveAt: now,
		Metadata:     metadata,
	}
}

// CreateSessionRequest is the request body for creating a session.
type CreateSessionRequest struct {
	ClientID string            `json:"client_id"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// DeleteSessionResponse is the response for deleting a session.
type DeleteSessionResponse struct {
	ID      string `json:"session_id"`
	Deleted bool   `json:"deleted"`
}
