package handlers

import (
	"github.com/google/wire"

	"voicebroker/internal/domain/voice"
)

// Provider holds all HTTP handlers.
type Provider struct {
	Voice   *VoiceHandler
	Session *SessionHandler
}

// NewProvider creates a new handler provider.
func NewProvider(processor *voice.Processor) *Provider {
	return &Provider{
		Voice:   NewVoiceHandler(processor),
		Session: NewSessionHandler(processor),
	}
}

// HandlerProvider provides all handlers for wire.
var HandlerProvider = wire.NewSet(
	NewVoiceHandler,
	NewSessionHandler,
	NewProvider,
)
