// Package openai implements the client for the upstream realtime voice
// provider: a REST control plane that mints per-session ephemeral
// credentials, and an SDP signaling endpoint addressed by session ID.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"voicebroker/internal/infrastructure/metrics"
)

// Client talks to the upstream realtime provider.
type Client struct {
	httpClient *resty.Client
	apiKey     string
	log        zerolog.Logger
}

// NewClient creates an upstream client. Every call carries the configured
// timeout; the source system had none, which left requests hanging on a
// stuck upstream.
func NewClient(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", "voice-broker/1.0")

	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		log:        log.With().Str("component", "openai-client").Logger(),
	}
}

// CreateSession opens an upstream control-plane session and returns its ID
// plus the short-lived credential for the signaling exchange.
func (c *Client) CreateSession(ctx context.Context, req *SessionRequest) (*SessionResponse, error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamCallDuration.WithLabelValues("create_session").Observe(time.Since(start).Seconds())
	}()

	var result SessionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post("/realtime-sessions")

	if err != nil {
		return nil, fmt.Errorf("create upstream session: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}
	if result.ID == "" || result.ClientSecret == nil || result.ClientSecret.Value == "" {
		return nil, fmt.Errorf("create upstream session: malformed response: %s", resp.String())
	}

	c.log.Debug().
		Str("upstream_session_id", result.ID).
		Msg("upstream session created")

	return &result, nil
}

// ExchangeSDP posts the raw client SDP offer to the signaling endpoint for
// the given upstream session, authenticated with the ephemeral credential,
// and returns the raw SDP answer.
func (c *Client) ExchangeSDP(ctx context.Context, upstreamSessionID, clientSecret, offerSDP string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamCallDuration.WithLabelValues("exchange_sdp").Observe(time.Since(start).Seconds())
	}()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(clientSecret).
		SetHeader("Content-Type", "application/sdp").
		SetQueryParam("session_id", upstreamSessionID).
		SetBody(offerSDP).
		Post("/realtime")

	if err != nil {
		return "", fmt.Errorf("exchange SDP: %w", err)
	}
	if resp.IsError() {
		return "", &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}

	answer := resp.String()
	if answer == "" {
		return "", fmt.Errorf("exchange SDP: empty answer from upstream")
	}

	return answer, nil
}
