package domain

import (
	"github.com/google/wire"

	"docchat/chat-gateway/internal/config"
	"docchat/chat-gateway/internal/domain/conversation"
	"docchat/chat-gateway/internal/domain/feedback"
	"docchat/chat-gateway/internal/domain/usage"
	"docchat/chat-gateway/internal/infrastructure/ragclient"
)

// ServiceProvider provides all domain services
var ServiceProvider = wire.NewSet(
	// Conversation domain
	conversation.NewService,
	ProvideConversationCache,
	ProvideAutosaveManager,

	// Usage gate
	ProvideUsageService,

	// Feedback
	feedback.NewService,
)

func ProvideConversationCache(svc *conversation.Service, cfg *config.Config) *conversation.Cache {
	return conversation.NewCache(svc, cfg.ConversationCacheTTL, cfg.ConversationFetchTimeout)
}

func ProvideAutosaveManager(cache *conversation.Cache, cfg *config.Config) *conversation.AutosaveManager {
	return conversation.NewAutosaveManager(cache, cfg.AutosaveDebounce)
}

func ProvideUsageService(client *ragclient.Client, cfg *config.Config) *usage.Service {
	return usage.NewService(client, cfg.UsageRefreshInterval)
}
