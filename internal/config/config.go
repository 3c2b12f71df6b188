package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Global singleton so background jobs can re-read configuration.
var globalConfig *Config

// Config holds all environment backed configuration for chat-gateway.
type Config struct {
	// HTTP Server
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9091"`
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// RAG backend
	RAGBackendURL   string        `env:"RAG_BACKEND_URL,notEmpty"`
	RAGQueryTimeout time.Duration `env:"RAG_QUERY_TIMEOUT" envDefault:"120s"`

	// Auth / identity
	JWKSURL       string        `env:"JWKS_URL"`
	Issuer        string        `env:"ISSUER"`
	Audience      string        `env:"AUDIENCE"`
	JWKSRefresh   time.Duration `env:"JWKS_REFRESH_INTERVAL" envDefault:"5m"`
	AuthClockSkew time.Duration `env:"AUTH_CLOCK_SKEW" envDefault:"30s"`

	// Relay stream shaping. The per-frame delay is presentation only; zero
	// disables pacing without changing the frame format.
	StreamFrameDelay time.Duration `env:"STREAM_FRAME_DELAY" envDefault:"20ms"`

	// Conversation cache & auto-save
	ConversationCacheTTL     time.Duration `env:"CONVERSATION_CACHE_TTL" envDefault:"30s"`
	ConversationFetchTimeout time.Duration `env:"CONVERSATION_FETCH_TIMEOUT" envDefault:"5s"`
	AutosaveDebounce         time.Duration `env:"AUTOSAVE_DEBOUNCE" envDefault:"400ms"`

	// Usage gate
	UsageRefreshInterval time.Duration `env:"USAGE_REFRESH_INTERVAL" envDefault:"60s"`

	// Rate limiting
	RateLimitPerMinute float64 `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"chat-gateway"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"docchat"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`

	// Features
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// Internal
	EnvReloadedAt time.Time
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.RAGBackendURL); err != nil {
		return nil, fmt.Errorf("invalid RAG_BACKEND_URL: %w", err)
	}

	if cfg.JWKSURL != "" {
		if _, err := url.ParseRequestURI(cfg.JWKSURL); err != nil {
			return nil, fmt.Errorf("invalid JWKS_URL: %w", err)
		}
		if cfg.Issuer == "" {
			return nil, errors.New("ISSUER is required when JWKS_URL is set")
		}
	}

	if cfg.StreamFrameDelay < 0 {
		return nil, errors.New("STREAM_FRAME_DELAY must not be negative")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.EnvReloadedAt = time.Now()

	globalConfig = cfg

	return cfg, nil
}

// GetGlobal returns the global config instance.
func GetGlobal() *Config {
	return globalConfig
}

// GetEnvReloadedAt returns when the environment was last reloaded
func GetEnvReloadedAt() time.Time {
	if globalConfig != nil {
		return globalConfig.EnvReloadedAt
	}
	return time.Time{}
}

var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}
