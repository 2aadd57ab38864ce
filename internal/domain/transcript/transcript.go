// Package transcript defines the append-only conversation log keyed by
// session ID. The log feeds the instruction assembly for each upstream
// session, so ordering is by append time.
package transcript

import (
	"context"
	"time"
)

// Roles recorded in the transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleError     = "error"
)

// Record is one conversation turn.
type Record struct {
	Role            string    `json:"role"`
	Text            string    `json:"text"`
	Timestamp       time.Time `json:"timestamp"`
	IsTranscription bool      `json:"is_transcription,omitempty"`
}

// Store is an append-only transcript sink.
type Store interface {
	// Append adds a record to a session's transcript.
	Append(ctx context.Context, sessionID string, rec Record) error

	// History returns a session's records in append order. A session with
	// no transcript yields an empty slice, not an error.
	History(ctx context.Context, sessionID string) ([]Record, error)
}
