package openai

import (
	"context"
	"errors"

	"voicebroker/internal/domain/bridge"
)

// Session defaults matching the upstream realtime API's expectations.
const (
	defaultTranscriptionModel = "whisper-1"
	defaultTemperature        = 0.8
	defaultMaxOutputTokens    = 4096

	vadThreshold         = 0.5
	vadPrefixPaddingMs   = 300
	vadSilenceDurationMs = 200
)

// Provider adapts the upstream client to the bridge's provider contract,
// filling in the model and session defaults the bridge does not know about.
type Provider struct {
	client *Client
	model  string
}

// NewProvider wraps a client with a fixed realtime model.
func NewProvider(client *Client, model string) *Provider {
	return &Provider{client: client, model: model}
}

// CreateSession opens an upstream session configured for voice with
// server-side turn detection and the booking tool exposed.
func (p *Provider) CreateSession(ctx context.Context, params bridge.CreateParams) (bridge.UpstreamSession, error) {
	req := &SessionRequest{
		Model:             p.model,
		Modalities:        []string{"text", "audio"},
		Instructions:      params.Instructions,
		Voice:             params.Voice,
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: "pcm16",
		InputAudioTranscription: &AudioTranscription{
			Model: defaultTranscriptionModel,
		},
		TurnDetection: &TurnDetection{
			Type:              "server_vad",
			Threshold:         vadThreshold,
			PrefixPaddingMs:   vadPrefixPaddingMs,
			SilenceDurationMs: vadSilenceDurationMs,
			CreateResponse:    true,
		},
		Tools: []Tool{
			{
				Type:        "function",
				Name:        "show_booking_popup",
				Description: "Display the meeting booking popup to the user. Call when the user agrees to schedule a call.",
			},
		},
		ToolChoice:              "auto",
		Temperature:             defaultTemperature,
		MaxResponseOutputTokens: defaultMaxOutputTokens,
	}

	resp, err := p.client.CreateSession(ctx, req)
	if err != nil {
		return bridge.UpstreamSession{}, translateError(err)
	}

	return bridge.UpstreamSession{
		ID:           resp.ID,
		ClientSecret: resp.ClientSecret.Value,
	}, nil
}

// ExchangeSDP relays the signaling exchange.
func (p *Provider) ExchangeSDP(ctx context.Context, upstreamSessionID, clientSecret, offerSDP string) (string, error) {
	answer, err := p.client.ExchangeSDP(ctx, upstreamSessionID, clientSecret, offerSDP)
	if err != nil {
		return "", translateError(err)
	}
	return answer, nil
}

// translateError rewraps transport errors into the bridge's vocabulary so
// staleness classification works without importing this package.
func translateError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &bridge.UpstreamError{Status: apiErr.Status, Body: apiErr.Body}
	}
	return err
}
