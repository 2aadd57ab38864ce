// Package bridge implements the per-session connection to the upstream
// realtime voice provider: the two-phase offer/answer exchange, the
// in-process cache of live bridges, and classification of upstream
// staleness.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"voicebroker/internal/domain/prompt"
	"voicebroker/internal/domain/transcript"
)

var (
	// ErrBridgeClosed is returned when an offer reaches a closed bridge.
	ErrBridgeClosed = errors.New("bridge closed")
	// ErrProviderInit is returned when a bridge cannot be initialized.
	ErrProviderInit = errors.New("provider session initialization failed")
)

// UpstreamSession is the result of an upstream control-plane call: the
// provider's session ID and the short-lived credential scoped to it.
type UpstreamSession struct {
	ID           string
	ClientSecret string
}

// CreateParams carries the per-call session configuration.
type CreateParams struct {
	Voice        string
	Instructions string
}

// UpstreamError carries the upstream HTTP status and body for a failed call.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: status %d: %s", e.Status, e.Body)
}

// ProviderClient is the upstream provider's two-phase protocol: a
// control-plane call that mints a session plus ephemeral credential, then a
// signaling exchange addressed by that session.
type ProviderClient interface {
	CreateSession(ctx context.Context, params CreateParams) (UpstreamSession, error)
	ExchangeSDP(ctx context.Context, upstreamSessionID, clientSecret, offerSDP string) (string, error)
}

// Answer is the SDP answer returned to the browser client.
type Answer struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// OfferResult is a successful offer exchange: the answer plus the
// instructions the upstream session was configured with.
type OfferResult struct {
	Answer       Answer
	Instructions string
}

type bridgeState int

const (
	stateUninitialized bridgeState = iota
	stateInitialized
	stateAnswering
	stateClosed
)

// Bridge mediates one session's connection to the upstream provider. At most
// one live bridge exists per session ID; the cache enforces that invariant.
type Bridge struct {
	sessionID string
	clientID  string
	voice     string

	provider    ProviderClient
	transcripts transcript.Store
	log         zerolog.Logger

	// offerMu serializes whole offer exchanges; mu only guards state.
	offerMu sync.Mutex

	mu                sync.Mutex
	state             bridgeState
	upstreamSessionID string
}

// NewBridge creates an uninitialized bridge for a session.
func NewBridge(sessionID, clientID, voice string, provider ProviderClient, transcripts transcript.Store, log zerolog.Logger) *Bridge {
	return &Bridge{
		sessionID:   sessionID,
		clientID:    clientID,
		voice:       voice,
		provider:    provider,
		transcripts: transcripts,
		log: log.With().
			Str("component", "bridge").
			Str("session_id", sessionID).
			Str("client_id", clientID).
			Logger(),
	}
}

// Initialize marks the bridge usable. It performs no network I/O; the
// upstream session is opened lazily on the first offer.
func (b *Bridge) Initialize() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateClosed {
		return ErrBridgeClosed
	}
	b.state = stateInitialized
	b.log.Debug().Str("voice", b.voice).Msg("bridge initialized")
	return nil
}

// Active reports whether the bridge has been initialized and not closed.
func (b *Bridge) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == stateInitialized || b.state == stateAnswering
}

// UpstreamSessionID returns the provider-assigned session ID, empty until
// the first successful control-plane call.
func (b *Bridge) UpstreamSessionID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.upstreamSessionID
}

// ProcessOffer relays a client SDP offer to the upstream provider and
// returns the provider's answer. Each call assembles instructions fresh from
// the transcript, opens an upstream session, and exchanges SDP with the
// minted credential. The bridge never retries; stale-session recovery is the
// caller's job.
//
// Offers for the same bridge serialize: the upstream provider rejects
// interleaved exchanges on one session, so a second offer blocks until the
// first completes.
func (b *Bridge) ProcessOffer(ctx context.Context, offerSDP string) (*OfferResult, error) {
	b.offerMu.Lock()
	defer b.offerMu.Unlock()

	b.mu.Lock()
	if b.state == stateClosed || b.state == stateUninitialized {
		b.mu.Unlock()
		return nil, ErrBridgeClosed
	}
	b.state = stateAnswering
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		if b.state == stateAnswering {
			b.state = stateInitialized
		}
		b.mu.Unlock()
	}()

	history, err := b.transcripts.History(ctx, b.sessionID)
	if err != nil {
		// Degrade to a fresh conversation rather than failing the call.
		b.log.Warn().Err(err).Msg("transcript load failed, proceeding without history")
		history = nil
	}
	instructions := prompt.Build(history)

	// Detached from the request context so an abandoned client does not
	// strand a half-created upstream session; the provider client's own
	// timeout still bounds the call.
	upstream, err := b.provider.CreateSession(context.WithoutCancel(ctx), CreateParams{
		Voice:        b.voice,
		Instructions: instructions,
	})
	if err != nil {
		return nil, fmt.Errorf("create upstream session: %w", err)
	}

	b.mu.Lock()
	b.upstreamSessionID = upstream.ID
	b.mu.Unlock()

	answerSDP, err := b.provider.ExchangeSDP(ctx, upstream.ID, upstream.ClientSecret, offerSDP)
	if err != nil {
		return nil, fmt.Errorf("exchange SDP: %w", err)
	}

	b.log.Info().
		Str("upstream_session_id", upstream.ID).
		Int("history_turns", len(history)).
		Msg("offer answered")

	return &OfferResult{
		Answer:       Answer{Type: "answer", SDP: answerSDP},
		Instructions: instructions,
	}, nil
}

// Close marks the bridge inactive. Idempotent; never fails.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateClosed {
		return
	}
	b.state = stateClosed
	b.log.Debug().Msg("bridge closed")
}
