package voice

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"voicebroker/internal/domain/bridge"
	"voicebroker/internal/domain/session"
	"voicebroker/internal/domain/tenant"
	"voicebroker/internal/domain/transcript"
	"voicebroker/internal/infrastructure/store"
	transcriptstore "voicebroker/internal/infrastructure/transcript"
)

// scriptedProvider fails SDP exchanges in order, then succeeds.
type scriptedProvider struct {
	creates      atomic.Int64
	exchangeN    atomic.Int64
	exchangeErrs []error
}

func (f *scriptedProvider) CreateSession(ctx context.Context, params bridge.CreateParams) (bridge.UpstreamSession, error) {
	f.creates.Add(1)
	return bridge.UpstreamSession{ID: "up_1", ClientSecret: "ek_1"}, nil
}

func (f *scriptedProvider) ExchangeSDP(ctx context.Context, upstreamSessionID, clientSecret, offerSDP string) (string, error) {
	n := int(f.exchangeN.Add(1)) - 1
	if n < len(f.exchangeErrs) && f.exchangeErrs[n] != nil {
		return "", f.exchangeErrs[n]
	}
	return "v=0\r\ns=answer\r\n", nil
}

type fixture struct {
	processor *Processor
	sessions  session.Service
	cache     *bridge.Cache
	provider  *scriptedProvider
	store     transcript.Store
}

func newFixture(t *testing.T, provider *scriptedProvider) *fixture {
	t.Helper()
	log := zerolog.Nop()

	registry := tenant.NewRegistry(map[string][]string{
		"acme": {"acme.example.com"},
	})
	guard := tenant.NewGuard(registry, nil)

	sessions := session.NewService(store.NewMemoryStore(time.Hour, log), log)
	transcripts := transcriptstore.NewMemoryStore()
	cache := bridge.NewCache(provider, transcripts, time.Hour, time.Hour, log)
	t.Cleanup(cache.Stop)

	return &fixture{
		processor: NewProcessor(guard, sessions, cache, transcripts, "alloy", log),
		sessions:  sessions,
		cache:     cache,
		provider:  provider,
		store:     transcripts,
	}
}

func (f *fixture) createSession(t *testing.T) string {
	t.Helper()
	sess, err := f.sessions.CreateSession(context.Background(), &session.CreateSessionRequest{ClientID: "acme"})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	return sess.ID
}

func offerFor(sessionID string) *OfferRequest {
	return &OfferRequest{
		ClientID:  "acme",
		SessionID: sessionID,
		Referer:   "https://acme.example.com/pricing",
		OfferSDP:  "v=0\r\ns=offer\r\n",
	}
}

func TestProcessor_ProcessOffer(t *testing.T) {
	f := newFixture(t, &scriptedProvider{})
	id := f.createSession(t)

	resp, err := f.processor.ProcessOffer(context.Background(), offerFor(id))
	if err != nil {
		t.Fatalf("ProcessOffer() error = %v", err)
	}
	if resp.Answer.Type != "answer" || resp.Answer.SDP == "" {
		t.Errorf("Answer = %+v", resp.Answer)
	}
	if resp.Instructions == "" {
		t.Error("Instructions is empty")
	}
}

func TestProcessor_ProcessOffer_Unauthorized(t *testing.T) {
	f := newFixture(t, &scriptedProvider{})
	id := f.createSession(t)

	tests := []struct {
		name     string
		clientID string
		referer  string
	}{
		{"unknown client", "mallory", "https://acme.example.com/"},
		{"wrong origin", "acme", "https://evil.example.net/"},
		{"missing referer", "acme", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := offerFor(id)
			req.ClientID = tt.clientID
			req.Referer = tt.referer
			if _, err := f.processor.ProcessOffer(context.Background(), req); !errors.Is(err, ErrUnauthorized) {
				t.Errorf("error = %v, want ErrUnauthorized", err)
			}
		})
	}

	if f.provider.creates.Load() != 0 {
		t.Error("denied request reached the upstream provider")
	}
}

func TestProcessor_ProcessOffer_UnknownSessionReplaced(t *testing.T) {
	f := newFixture(t, &scriptedProvider{})

	_, err := f.processor.ProcessOffer(context.Background(), offerFor("sess_gone"))

	var expired *SessionExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("error = %v, want *SessionExpiredError", err)
	}
	if expired.NewSessionID == "" {
		t.Fatal("no replacement session ID")
	}
	if _, err := f.sessions.GetSession(context.Background(), expired.NewSessionID); err != nil {
		t.Errorf("replacement session not stored: %v", err)
	}
	if f.provider.creates.Load() != 0 {
		t.Error("offer was processed despite missing session")
	}
}

func TestProcessor_ProcessOffer_StaleRecovery(t *testing.T) {
	stale := &bridge.UpstreamError{Status: 404, Body: `{"error":{"code":"conversation_not_found","message":"gone"}}`}
	f := newFixture(t, &scriptedProvider{exchangeErrs: []error{stale}})
	id := f.createSession(t)

	first, _ := f.cache.GetOrCreate(context.Background(), id, "acme", "alloy")

	resp, err := f.processor.ProcessOffer(context.Background(), offerFor(id))
	if err != nil {
		t.Fatalf("ProcessOffer() error = %v, want recovery to succeed", err)
	}
	if resp.Answer.SDP == "" {
		t.Error("no answer after recovery")
	}
	if f.provider.exchangeN.Load() != 2 {
		t.Errorf("exchanges = %d, want 2 (original + one retry)", f.provider.exchangeN.Load())
	}
	if first.Active() {
		t.Error("stale bridge not torn down")
	}
	if replacement, ok := f.cache.Get(id); !ok || replacement == first {
		t.Error("stale bridge not replaced in cache")
	}
}

func TestProcessor_ProcessOffer_SingleRecoveryCycle(t *testing.T) {
	stale := &bridge.UpstreamError{Status: 400, Body: "Conversation already has an active response"}
	f := newFixture(t, &scriptedProvider{exchangeErrs: []error{stale, stale, stale}})
	id := f.createSession(t)

	_, err := f.processor.ProcessOffer(context.Background(), offerFor(id))

	var exhausted *RetryExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %v, want *RetryExhaustedError", err)
	}
	if f.provider.exchangeN.Load() != 2 {
		t.Errorf("exchanges = %d, want exactly 2 (no second retry)", f.provider.exchangeN.Load())
	}
}

func TestProcessor_ProcessOffer_NonStaleNotRetried(t *testing.T) {
	hard := &bridge.UpstreamError{Status: 429, Body: `{"error":{"code":"rate_limit_exceeded","message":"slow down"}}`}
	f := newFixture(t, &scriptedProvider{exchangeErrs: []error{hard}})
	id := f.createSession(t)

	_, err := f.processor.ProcessOffer(context.Background(), offerFor(id))
	if err == nil {
		t.Fatal("expected error")
	}
	var exhausted *RetryExhaustedError
	if errors.As(err, &exhausted) {
		t.Error("non-stale failure went through recovery")
	}
	if f.provider.exchangeN.Load() != 1 {
		t.Errorf("exchanges = %d, want 1", f.provider.exchangeN.Load())
	}
}

func TestProcessor_AppendTranscript_FeedsNextOffer(t *testing.T) {
	f := newFixture(t, &scriptedProvider{})
	id := f.createSession(t)
	ctx := context.Background()

	err := f.processor.AppendTranscript(ctx, &TranscriptEntry{
		ClientID:  "acme",
		SessionID: id,
		Referer:   "https://acme.example.com/",
		Role:      transcript.RoleUser,
		Text:      "what does it cost",
	})
	if err != nil {
		t.Fatalf("AppendTranscript() error = %v", err)
	}

	resp, err := f.processor.ProcessOffer(ctx, offerFor(id))
	if err != nil {
		t.Fatalf("ProcessOffer() error = %v", err)
	}
	if !strings.Contains(resp.Instructions, "<user>what does it cost</user>") {
		t.Error("appended turn missing from assembled instructions")
	}
}

func TestProcessor_AppendTranscript_UnknownSession(t *testing.T) {
	f := newFixture(t, &scriptedProvider{})

	err := f.processor.AppendTranscript(context.Background(), &TranscriptEntry{
		ClientID:  "acme",
		SessionID: "sess_gone",
		Referer:   "https://acme.example.com/",
		Role:      transcript.RoleUser,
		Text:      "hello",
	})

	var expired *SessionExpiredError
	if !errors.As(err, &expired) {
		t.Errorf("error = %v, want *SessionExpiredError", err)
	}
}

func TestProcessor_Instructions(t *testing.T) {
	f := newFixture(t, &scriptedProvider{})

	text, err := f.processor.Instructions("acme", "https://acme.example.com/")
	if err != nil {
		t.Fatalf("Instructions() error = %v", err)
	}
	if text == "" {
		t.Error("empty instruction template")
	}

	if _, err := f.processor.Instructions("mallory", "https://acme.example.com/"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestProcessor_ValidateClient(t *testing.T) {
	f := newFixture(t, &scriptedProvider{})

	if err := f.processor.ValidateClient("acme", "https://acme.example.com/"); err != nil {
		t.Errorf("ValidateClient() error = %v", err)
	}
	if err := f.processor.ValidateClient("acme", "https://evil.example.net/"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
	if err := f.processor.ValidateClient("mallory", "https://acme.example.com/"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestProcessor_CreateAndValidateSession(t *testing.T) {
	f := newFixture(t, &scriptedProvider{})
	ctx := context.Background()

	sess, err := f.processor.CreateSession(ctx, "acme", "https://acme.example.com/", map[string]string{"page": "pricing"})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if sess.ClientID != "acme" {
		t.Errorf("ClientID = %q", sess.ClientID)
	}

	got, err := f.processor.ValidateSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if got.Metadata["page"] != "pricing" {
		t.Errorf("Metadata = %v", got.Metadata)
	}

	if _, err := f.processor.CreateSession(ctx, "acme", "https://evil.example.net/", nil); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
	if _, err := f.processor.ValidateSession(ctx, "sess_gone"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestProcessor_EndSession(t *testing.T) {
	f := newFixture(t, &scriptedProvider{})
	id := f.createSession(t)
	ctx := context.Background()

	b, _ := f.cache.GetOrCreate(ctx, id, "acme", "alloy")

	deleted, err := f.processor.EndSession(ctx, id)
	if err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
	if !deleted {
		t.Error("EndSession() = false for existing session")
	}
	if b.Active() {
		t.Error("bridge still active after EndSession")
	}

	deleted, err = f.processor.EndSession(ctx, id)
	if err != nil || deleted {
		t.Errorf("second EndSession() = (%v, %v), want (false, nil)", deleted, err)
	}
}
