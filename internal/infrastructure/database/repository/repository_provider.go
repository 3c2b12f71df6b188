package repository

import (
	"docchat/chat-gateway/internal/infrastructure/database/repository/conversationrepo"
	"docchat/chat-gateway/internal/infrastructure/database/repository/feedbackrepo"

	"github.com/google/wire"
)

var RepositoryProvider = wire.NewSet(
	conversationrepo.NewConversationGormRepository,
	feedbackrepo.NewFeedbackGormRepository,
)
