// Package voice orchestrates the signaling path: authorization, session
// resolution, bridge lookup, the offer exchange, and stale-session recovery.
// The HTTP layer stays thin; everything that decides lives here.
package voice

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"voicebroker/internal/domain/bridge"
	"voicebroker/internal/domain/prompt"
	"voicebroker/internal/domain/session"
	"voicebroker/internal/domain/tenant"
	"voicebroker/internal/domain/transcript"
	"voicebroker/internal/infrastructure/metrics"
)

// ErrUnauthorized is returned when the tenant guard denies the request.
var ErrUnauthorized = errors.New("client not authorized for this origin")

// SessionExpiredError reports that the named session no longer exists. A
// replacement session has already been created; the client should retry
// with NewSessionID.
type SessionExpiredError struct {
	NewSessionID string
}

func (e *SessionExpiredError) Error() string {
	return "session expired or not found"
}

// RetryExhaustedError reports that the one permitted stale-session recovery
// cycle also failed. The client must start over with a fresh session.
type RetryExhaustedError struct {
	Err error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("offer failed after session recovery: %v", e.Err)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Err }

// OfferRequest is one client SDP offer with its identity context.
type OfferRequest struct {
	ClientID  string
	SessionID string
	Referer   string
	Voice     string
	OfferSDP  string
}

// OfferResponse is the answer returned to the client.
type OfferResponse struct {
	Answer       bridge.Answer
	Instructions string
}

// TranscriptEntry is one turn appended via the text-log endpoint.
type TranscriptEntry struct {
	ClientID        string
	SessionID       string
	Referer         string
	Role            string
	Text            string
	IsTranscription bool
}

// Processor is the voice signaling service.
type Processor struct {
	guard       *tenant.Guard
	sessions    session.Service
	cache       *bridge.Cache
	transcripts transcript.Store

	defaultVoice string
	log          zerolog.Logger
}

// NewProcessor creates a voice processor.
func NewProcessor(guard *tenant.Guard, sessions session.Service, cache *bridge.Cache, transcripts transcript.Store, defaultVoice string, log zerolog.Logger) *Processor {
	return &Processor{
		guard:        guard,
		sessions:     sessions,
		cache:        cache,
		transcripts:  transcripts,
		defaultVoice: defaultVoice,
		log:          log.With().Str("component", "voice-processor").Logger(),
	}
}

// ProcessOffer runs the full signaling exchange for one offer. A stale
// upstream session earns exactly one delete-recreate-retry cycle; any other
// failure, or a second stale failure, surfaces to the caller.
func (p *Processor) ProcessOffer(ctx context.Context, req *OfferRequest) (*OfferResponse, error) {
	if !p.authorize(req.ClientID, req.Referer) {
		return nil, ErrUnauthorized
	}

	if _, err := p.sessions.GetSession(ctx, req.SessionID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, p.replaceSession(ctx, req)
		}
		return nil, fmt.Errorf("session lookup: %w", err)
	}

	voice := req.Voice
	if voice == "" {
		voice = p.defaultVoice
	}

	b, err := p.cache.GetOrCreate(ctx, req.SessionID, req.ClientID, voice)
	if err != nil {
		metrics.RecordOffer("error")
		return nil, err
	}

	result, err := b.ProcessOffer(ctx, req.OfferSDP)
	if err == nil {
		metrics.RecordOffer("ok")
		return &OfferResponse{Answer: result.Answer, Instructions: result.Instructions}, nil
	}

	if !bridge.IsStale(err) {
		metrics.RecordOffer("error")
		return nil, err
	}

	// One recovery cycle: tear down the stale bridge, build a fresh one,
	// retry the offer. Never more than once per request.
	p.log.Warn().
		Err(err).
		Str("session_id", req.SessionID).
		Msg("stale upstream session, recreating bridge")

	p.cache.Delete(req.SessionID)
	b, err = p.cache.GetOrCreate(ctx, req.SessionID, req.ClientID, voice)
	if err != nil {
		metrics.StaleRecoveries.WithLabelValues("failed").Inc()
		metrics.RecordOffer("error")
		return nil, err
	}

	result, err = b.ProcessOffer(ctx, req.OfferSDP)
	if err != nil {
		metrics.StaleRecoveries.WithLabelValues("failed").Inc()
		metrics.RecordOffer("error")
		return nil, &RetryExhaustedError{Err: err}
	}

	metrics.StaleRecoveries.WithLabelValues("recovered").Inc()
	metrics.RecordOffer("recovered")
	return &OfferResponse{Answer: result.Answer, Instructions: result.Instructions}, nil
}

// AppendTranscript records one conversation turn for a session. The turn
// feeds the instructions assembled for later offers on the same session.
func (p *Processor) AppendTranscript(ctx context.Context, entry *TranscriptEntry) error {
	if !p.authorize(entry.ClientID, entry.Referer) {
		return ErrUnauthorized
	}

	if _, err := p.sessions.GetSession(ctx, entry.SessionID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return &SessionExpiredError{}
		}
		return fmt.Errorf("session lookup: %w", err)
	}

	return p.transcripts.Append(ctx, entry.SessionID, transcript.Record{
		Role:            entry.Role,
		Text:            entry.Text,
		IsTranscription: entry.IsTranscription,
	})
}

// ValidateClient runs the standalone authorization handshake the browser
// SDK performs before opening a session.
func (p *Processor) ValidateClient(clientID, referer string) error {
	if !p.authorize(clientID, referer) {
		return ErrUnauthorized
	}
	return nil
}

// Instructions returns the static agent instruction template.
func (p *Processor) Instructions(clientID, referer string) (string, error) {
	if !p.authorize(clientID, referer) {
		return "", ErrUnauthorized
	}
	return prompt.AgentInstructions, nil
}

// CreateSession mints a broker session for an authorized client.
func (p *Processor) CreateSession(ctx context.Context, clientID, referer string, metadata map[string]string) (*session.Session, error) {
	if !p.authorize(clientID, referer) {
		return nil, ErrUnauthorized
	}
	return p.sessions.CreateSession(ctx, &session.CreateSessionRequest{
		ClientID: clientID,
		Metadata: metadata,
	})
}

// ValidateSession looks a session up, refreshing its idle clock.
func (p *Processor) ValidateSession(ctx context.Context, sessionID string) (*session.Session, error) {
	return p.sessions.GetSession(ctx, sessionID)
}

// EndSession tears down a session's bridge and deletes the session record.
// Returns false when the session did not exist.
func (p *Processor) EndSession(ctx context.Context, sessionID string) (bool, error) {
	p.cache.Delete(sessionID)
	return p.sessions.DeleteSession(ctx, sessionID)
}

func (p *Processor) authorize(clientID, referer string) bool {
	allowed := p.guard.Authorize(clientID, referer)
	metrics.RecordAuthorization(allowed)
	return allowed
}

// replaceSession creates a fresh session for the client and reports the
// expiry with the replacement ID. No offer is processed on this path; the
// client retries against the new session.
func (p *Processor) replaceSession(ctx context.Context, req *OfferRequest) error {
	fresh, err := p.sessions.CreateSession(ctx, &session.CreateSessionRequest{ClientID: req.ClientID})
	if err != nil {
		return fmt.Errorf("create replacement session: %w", err)
	}

	metrics.RecordOffer("new_session")
	p.log.Info().
		Str("expired_session_id", req.SessionID).
		Str("new_session_id", fresh.ID).
		Msg("session expired, replacement created")

	return &SessionExpiredError{NewSessionID: fresh.ID}
}
