package infrastructure

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"docchat/chat-gateway/internal/config"
	"docchat/chat-gateway/internal/infrastructure/auth"
	"docchat/chat-gateway/internal/infrastructure/crontab"
	"docchat/chat-gateway/internal/infrastructure/database"
	"docchat/chat-gateway/internal/infrastructure/database/repository"
	"docchat/chat-gateway/internal/infrastructure/logger"
	"docchat/chat-gateway/internal/infrastructure/ragclient"
)

// ProvideConfig loads and provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideTokenValidator provides a JWT validator, or nil when no JWKS
// endpoint is configured and only anonymous identities are accepted.
func ProvideTokenValidator(cfg *config.Config, log zerolog.Logger) (*auth.TokenValidator, error) {
	if cfg.JWKSURL == "" {
		return nil, nil
	}
	return auth.NewTokenValidator(
		context.Background(),
		cfg.JWKSURL,
		cfg.Issuer,
		cfg.Audience,
		cfg.JWKSRefresh,
		cfg.AuthClockSkew,
		log,
	)
}

// ProvideDatabase provides a database connection
func ProvideDatabase(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		log.Info().Msg("Running database migrations...")
		if err := database.Migration(db); err != nil {
			log.Error().Err(err).Msg("Failed to run database migrations")
			return nil, err
		}
		log.Info().Msg("Database migrations completed successfully")
	}

	return db, nil
}

// ProvideRAGClient provides the document-QA backend client
func ProvideRAGClient(cfg *config.Config) *ragclient.Client {
	return ragclient.NewClient(cfg.RAGBackendURL, cfg.RAGQueryTimeout)
}

// Infrastructure holds all infrastructure dependencies
type Infrastructure struct {
	DB             *gorm.DB
	TokenValidator *auth.TokenValidator
	RAGClient      *ragclient.Client
	Logger         zerolog.Logger
}

// NewInfrastructure creates a new infrastructure instance
func NewInfrastructure(
	db *gorm.DB,
	tokenValidator *auth.TokenValidator,
	ragClient *ragclient.Client,
	logger zerolog.Logger,
) *Infrastructure {
	return &Infrastructure{
		DB:             db,
		TokenValidator: tokenValidator,
		RAGClient:      ragClient,
		Logger:         logger,
	}
}

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	ProvideConfig,

	ProvideDatabase,
	repository.RepositoryProvider,

	ProvideRAGClient,

	logger.GetLogger,

	ProvideTokenValidator,

	crontab.NewCrontab,

	NewInfrastructure,
)
