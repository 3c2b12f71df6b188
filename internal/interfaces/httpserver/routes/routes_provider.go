package routes

import (
	"github.com/google/wire"

	"docchat/chat-gateway/internal/interfaces/httpserver/handlers/chathandler"
	"docchat/chat-gateway/internal/interfaces/httpserver/handlers/conversationhandler"
	"docchat/chat-gateway/internal/interfaces/httpserver/handlers/documenthandler"
	"docchat/chat-gateway/internal/interfaces/httpserver/handlers/feedbackhandler"
	"docchat/chat-gateway/internal/interfaces/httpserver/handlers/identityhandler"
	"docchat/chat-gateway/internal/interfaces/httpserver/handlers/usagehandler"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes/auth"
	v1 "docchat/chat-gateway/internal/interfaces/httpserver/routes/v1"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes/v1/chat"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes/v1/conversation"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes/v1/document"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes/v1/feedback"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes/v1/usage"
)

var RouteProvider = wire.NewSet(
	// Handlers
	chathandler.NewRelayHandler,
	conversationhandler.NewConversationHandler,
	usagehandler.NewUsageHandler,
	feedbackhandler.NewFeedbackHandler,
	documenthandler.NewDocumentHandler,
	identityhandler.NewIdentityHandler,

	// Routes
	auth.NewAuthRoute,
	v1.NewV1Route,
	chat.NewChatRoute,
	conversation.NewConversationRoute,
	usage.NewUsageRoute,
	feedback.NewFeedbackRoute,
	document.NewDocumentRoute,
)
