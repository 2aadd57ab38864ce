// Package requests contains HTTP request DTOs for the voice broker API.
package requests

// SDPOffer is the client's WebRTC offer.
type SDPOffer struct {
	Type string `json:"type" binding:"required"`
	SDP  string `json:"sdp" binding:"required"`
}

// ProcessVoiceRequest is the body for the signaling endpoint.
type ProcessVoiceRequest struct {
	ClientID  string   `json:"client_id" binding:"required"`
	SessionID string   `json:"session_id" binding:"required"`
	Offer     SDPOffer `json:"offer" binding:"required"`
	Voice     string   `json:"voice,omitempty"`
}

// TextLogRequest appends one conversation turn to a session's transcript.
type TextLogRequest struct {
	ClientID        string `json:"client_id" binding:"required"`
	SessionID       string `json:"session_id" binding:"required"`
	Role            string `json:"role" binding:"required"`
	Text            string `json:"text" binding:"required"`
	IsTranscription bool   `json:"is_transcription,omitempty"`
}

// ValidateClientRequest is the body for the pre-session authorization
// handshake.
type ValidateClientRequest struct {
	ClientID string `json:"client_id" binding:"required"`
}

// CreateSessionRequest is the body for explicit session creation.
type CreateSessionRequest struct {
	ClientID string            `json:"client_id" binding:"required"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
