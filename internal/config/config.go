package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the voice-broker service.
type Config struct {
	// Service settings
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"voice-broker"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"VOICE_BROKER_PORT" envDefault:"8090"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// OpenTelemetry
	EnableTracing bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`

	// Upstream realtime provider
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `env:"OPENAI_REALTIME_BASE_URL" envDefault:"https://api.openai.com/v1"`
	RealtimeModel   string        `env:"REALTIME_MODEL" envDefault:"gpt-4o-realtime-preview-2024-12-17"`
	DefaultVoice    string        `env:"DEFAULT_VOICE" envDefault:"alloy"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"15s"`

	// Session store
	SessionBackend       string        `env:"SESSION_BACKEND" envDefault:"memory"` // memory | redis
	RedisURL             string        `env:"REDIS_URL" envDefault:""`
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`

	// Provider bridge cache. The bridge idle window is intentionally
	// independent of the session TTL: the bridge is a capacity-bounded
	// cache, the session is durable conversation identity.
	BridgeIdleTTL       time.Duration `env:"BRIDGE_IDLE_TTL" envDefault:"30s"`
	BridgeSweepInterval time.Duration `env:"BRIDGE_SWEEP_INTERVAL" envDefault:"15s"`

	// Transcript sink
	TranscriptBackend string        `env:"TRANSCRIPT_BACKEND" envDefault:"memory"` // memory | redis | postgres
	TranscriptDSN     string        `env:"TRANSCRIPT_DATABASE_DSN" envDefault:""`
	TranscriptTTL     time.Duration `env:"TRANSCRIPT_TTL" envDefault:"24h"`

	// Audit log queue
	AuditBuffer int `env:"AUDIT_BUFFER" envDefault:"256"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	switch cfg.SessionBackend {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return nil, fmt.Errorf("REDIS_URL is required when SESSION_BACKEND is redis")
		}
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.SessionBackend)
	}

	switch cfg.TranscriptBackend {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return nil, fmt.Errorf("REDIS_URL is required when TRANSCRIPT_BACKEND is redis")
		}
	case "postgres":
		if strings.TrimSpace(cfg.TranscriptDSN) == "" {
			return nil, fmt.Errorf("TRANSCRIPT_DATABASE_DSN is required when TRANSCRIPT_BACKEND is postgres")
		}
	default:
		return nil, fmt.Errorf("unknown TRANSCRIPT_BACKEND %q", cfg.TranscriptBackend)
	}

	if cfg.BridgeIdleTTL <= 0 {
		return nil, fmt.Errorf("BRIDGE_IDLE_TTL must be positive")
	}
	if cfg.BridgeSweepInterval <= 0 {
		return nil, fmt.Errorf("BRIDGE_SWEEP_INTERVAL must be positive")
	}

	return cfg, nil
}

// Addr returns the HTTP server address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
