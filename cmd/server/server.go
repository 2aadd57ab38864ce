package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"voicebroker/internal/config"
	"voicebroker/internal/domain/bridge"
	"voicebroker/internal/domain/session"
	"voicebroker/internal/domain/tenant"
	"voicebroker/internal/domain/transcript"
	"voicebroker/internal/domain/voice"
	"voicebroker/internal/infrastructure/audit"
	"voicebroker/internal/infrastructure/logger"
	"voicebroker/internal/infrastructure/observability"
	"voicebroker/internal/infrastructure/openai"
	"voicebroker/internal/infrastructure/store"
	transcriptstore "voicebroker/internal/infrastructure/transcript"
	"voicebroker/internal/interfaces/httpserver"
)

// Application holds the main application components.
type Application struct {
	httpServer    *httpserver.HTTPServer
	bridgeCache   *bridge.Cache
	sessionSweep  *store.Sweeper
	auditRecorder *audit.Recorder
	log           zerolog.Logger
}

// NewApplication creates a new application instance.
func NewApplication(
	httpServer *httpserver.HTTPServer,
	bridgeCache *bridge.Cache,
	sessionSweep *store.Sweeper,
	auditRecorder *audit.Recorder,
	log zerolog.Logger,
) *Application {
	return &Application{
		httpServer:    httpServer,
		bridgeCache:   bridgeCache,
		sessionSweep:  sessionSweep,
		auditRecorder: auditRecorder,
		log:           log,
	}
}

// Start runs the application.
func (a *Application) Start(ctx context.Context) error {
	a.bridgeCache.Start(ctx)
	if a.sessionSweep != nil {
		a.sessionSweep.Start(ctx)
	}

	// Run HTTP server (blocks until context cancelled)
	err := a.httpServer.Run(ctx)

	if a.sessionSweep != nil {
		a.sessionSweep.Stop()
	}
	a.bridgeCache.Stop()
	a.auditRecorder.Close()

	return err
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup observability
	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	// Tenant allow-list from the environment
	registry, err := tenant.LoadRegistry(os.LookupEnv)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load tenant registry")
	}
	auditRecorder := audit.NewRecorder(cfg.AuditBuffer, log)
	guard := tenant.NewGuard(registry, auditRecorder)

	// Session store backend
	sessionStore, sessionSweep, err := buildSessionStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize session store")
	}
	sessionService := session.NewService(sessionStore, log)

	// Transcript backend
	transcripts, err := buildTranscriptStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize transcript store")
	}

	// Upstream provider client and bridge cache
	upstreamClient := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.UpstreamTimeout, log)
	provider := openai.NewProvider(upstreamClient, cfg.RealtimeModel)
	bridgeCache := bridge.NewCache(provider, transcripts, cfg.BridgeIdleTTL, cfg.BridgeSweepInterval, log)

	processor := voice.NewProcessor(guard, sessionService, bridgeCache, transcripts, cfg.DefaultVoice, log)

	httpServer := httpserver.New(cfg, log, processor)

	app := NewApplication(httpServer, bridgeCache, sessionSweep, auditRecorder, log)

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Str("session_backend", cfg.SessionBackend).
		Str("transcript_backend", cfg.TranscriptBackend).
		Msg("starting application")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// buildSessionStore selects the session backend. The memory store needs a
// periodic sweep; Redis expires keys natively, so no sweeper is returned.
func buildSessionStore(cfg *config.Config, log zerolog.Logger) (session.Store, *store.Sweeper, error) {
	switch cfg.SessionBackend {
	case "redis":
		rs, err := store.NewRedisStore(cfg.RedisURL, cfg.SessionTTL, log)
		if err != nil {
			return nil, nil, err
		}
		return rs, nil, nil
	default:
		ms := store.NewMemoryStore(cfg.SessionTTL, log)
		sweeper := store.NewSweeper(ms, cfg.SessionSweepInterval, log)
		return ms, sweeper, nil
	}
}

func buildTranscriptStore(cfg *config.Config) (transcript.Store, error) {
	switch cfg.TranscriptBackend {
	case "redis":
		return transcriptstore.NewRedisStore(cfg.RedisURL, cfg.TranscriptTTL)
	case "postgres":
		return transcriptstore.NewPostgresStore(cfg.TranscriptDSN)
	default:
		return transcriptstore.NewMemoryStore(), nil
	}
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
