//go:build wireinject
// +build wireinject

package main

import (
	"os"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"voicebroker/internal/config"
	"voicebroker/internal/domain/bridge"
	"voicebroker/internal/domain/session"
	"voicebroker/internal/domain/tenant"
	"voicebroker/internal/domain/transcript"
	"voicebroker/internal/domain/voice"
	"voicebroker/internal/infrastructure/audit"
	"voicebroker/internal/infrastructure/openai"
	"voicebroker/internal/infrastructure/store"
	transcriptstore "voicebroker/internal/infrastructure/transcript"
	"voicebroker/internal/interfaces/httpserver"
)

// ProviderSet is the wire provider set for the application.
var ProviderSet = wire.NewSet(
	// Infrastructure providers
	ProvideTenantRegistry,
	ProvideAuditRecorder,
	ProvideGuard,
	ProvideSessionStore,
	ProvideSessionSweeper,
	ProvideTranscriptStore,
	ProvideUpstreamClient,
	ProvideProvider,
	ProvideBridgeCache,

	// Domain providers
	ProvideSessionService,
	ProvideProcessor,

	// Interface providers
	httpserver.New,

	// Application
	NewApplication,
)

// ProvideTenantRegistry loads the tenant allow-list from the environment.
func ProvideTenantRegistry() (*tenant.Registry, error) {
	return tenant.LoadRegistry(os.LookupEnv)
}

// ProvideAuditRecorder provides the async authorization audit recorder.
func ProvideAuditRecorder(cfg *config.Config, log zerolog.Logger) *audit.Recorder {
	return audit.NewRecorder(cfg.AuditBuffer, log)
}

// ProvideGuard provides the tenant guard.
func ProvideGuard(registry *tenant.Registry, recorder *audit.Recorder) *tenant.Guard {
	return tenant.NewGuard(registry, recorder)
}

// ProvideSessionStore provides the in-memory session store.
func ProvideSessionStore(cfg *config.Config, log zerolog.Logger) *store.MemoryStore {
	return store.NewMemoryStore(cfg.SessionTTL, log)
}

// ProvideSessionSweeper provides the session expiry sweeper.
func ProvideSessionSweeper(ms *store.MemoryStore, cfg *config.Config, log zerolog.Logger) *store.Sweeper {
	return store.NewSweeper(ms, cfg.SessionSweepInterval, log)
}

// ProvideTranscriptStore provides the in-memory transcript store.
func ProvideTranscriptStore() transcript.Store {
	return transcriptstore.NewMemoryStore()
}

// ProvideUpstreamClient provides the upstream provider REST client.
func ProvideUpstreamClient(cfg *config.Config, log zerolog.Logger) *openai.Client {
	return openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.UpstreamTimeout, log)
}

// ProvideProvider adapts the upstream client to the bridge contract.
func ProvideProvider(client *openai.Client, cfg *config.Config) bridge.ProviderClient {
	return openai.NewProvider(client, cfg.RealtimeModel)
}

// ProvideBridgeCache provides the live bridge cache.
func ProvideBridgeCache(provider bridge.ProviderClient, transcripts transcript.Store, cfg *config.Config, log zerolog.Logger) *bridge.Cache {
	return bridge.NewCache(provider, transcripts, cfg.BridgeIdleTTL, cfg.BridgeSweepInterval, log)
}

// ProvideSessionService provides the session service.
func ProvideSessionService(ms *store.MemoryStore, log zerolog.Logger) session.Service {
	return session.NewService(ms, log)
}

// ProvideProcessor provides the voice processor.
func ProvideProcessor(
	guard *tenant.Guard,
	sessions session.Service,
	cache *bridge.Cache,
	transcripts transcript.Store,
	cfg *config.Config,
	log zerolog.Logger,
) *voice.Processor {
	return voice.NewProcessor(guard, sessions, cache, transcripts, cfg.DefaultVoice, log)
}

// CreateApplication creates the application with all dependencies wired.
// The memory-backed stores are the wire path; main selects Redis or Postgres
// backends from config when configured.
func CreateApplication(
	cfg *config.Config,
	log zerolog.Logger,
) (*Application, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
