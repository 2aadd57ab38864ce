// Package responses contains HTTP response DTOs and error mapping for the
// voice broker API.
package responses

import (
	"time"

	"voicebroker/internal/domain/bridge"
	"voicebroker/internal/domain/session"
)

// ProcessVoiceResponse is the signaling endpoint's success body.
type ProcessVoiceResponse struct {
	Answer       bridge.Answer `json:"answer"`
	Instructions string        `json:"instructions"`
}

// SessionResponse represents a broker session.
type SessionResponse struct {
	SessionID    string            `json:"session_id"`
	ClientID     string            `json:"client_id"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActiveAt time.Time         `json:"last_active_at"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// NewSessionResponse converts a domain session to its response form.
func NewSessionResponse(sess *session.Session) *SessionResponse {
	return &SessionResponse{
		SessionID:    sess.ID,
		ClientID:     sess.ClientID,
		CreatedAt:    sess.CreatedAt,
		LastActiveAt: sess.LastActiveAt,
		Metadata:     sess.Metadata,
	}
}

// ValidateSessionResponse is the body for the session validation ping.
type ValidateSessionResponse struct {
	Valid   bool             `json:"valid"`
	Session *SessionResponse `json:"session,omitempty"`
}

// DeleteSessionResponse confirms a session deletion.
type DeleteSessionResponse struct {
	Deleted   bool   `json:"deleted"`
	SessionID string `json:"session_id"`
}

// TextLogResponse confirms a transcript append.
type TextLogResponse struct {
	Logged bool `json:"logged"`
}

// ValidateClientResponse is the body for the authorization handshake.
type ValidateClientResponse struct {
	Valid bool `json:"valid"`
}

// InstructionsResponse carries the agent instruction template.
type InstructionsResponse struct {
	Instructions string `json:"instructions"`
}
