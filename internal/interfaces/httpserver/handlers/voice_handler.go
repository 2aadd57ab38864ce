// Package handlers adapts HTTP requests to the voice processor.
package handlers

import (
	"context"

	"voicebroker/internal/domain/session"
	"voicebroker/internal/domain/voice"
)

// VoiceHandler handles signaling and transcript requests.
type VoiceHandler struct {
	processor *voice.Processor
}

// NewVoiceHandler creates a new voice handler.
func NewVoiceHandler(processor *voice.Processor) *VoiceHandler {
	return &VoiceHandler{processor: processor}
}

// ProcessOffer runs the signaling exchange for one SDP offer.
func (h *VoiceHandler) ProcessOffer(ctx context.Context, req *voice.OfferRequest) (*voice.OfferResponse, error) {
	return h.processor.ProcessOffer(ctx, req)
}

// AppendTranscript records one conversation turn.
func (h *VoiceHandler) AppendTranscript(ctx context.Context, entry *voice.TranscriptEntry) error {
	return h.processor.AppendTranscript(ctx, entry)
}

// Instructions returns the agent instruction template.
func (h *VoiceHandler) Instructions(clientID, referer string) (string, error) {
	return h.processor.Instructions(clientID, referer)
}

// ValidateClient checks a client against the tenant allow-list.
func (h *VoiceHandler) ValidateClient(clientID, referer string) error {
	return h.processor.ValidateClient(clientID, referer)
}

// SessionHandler handles broker session lifecycle requests.
type SessionHandler struct {
	processor *voice.Processor
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(processor *voice.Processor) *SessionHandler {
	return &SessionHandler{processor: processor}
}

// CreateSession mints a new broker session for a client.
func (h *SessionHandler) CreateSession(ctx context.Context, clientID, referer string, metadata map[string]string) (*session.Session, error) {
	return h.processor.CreateSession(ctx, clientID, referer, metadata)
}

// ValidateSession checks that a session exists, refreshing its idle clock.
func (h *SessionHandler) ValidateSession(ctx context.Context, id string) (*session.Session, error) {
	return h.processor.ValidateSession(ctx, id)
}

// DeleteSession ends a session and tears down its bridge.
func (h *SessionHandler) DeleteSession(ctx context.Context, id string) (bool, error) {
	return h.processor.EndSession(ctx, id)
}
