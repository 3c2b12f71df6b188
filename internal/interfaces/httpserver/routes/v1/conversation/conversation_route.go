package conversation

import (
	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/interfaces/httpserver/handlers/conversationhandler"
)

// ConversationRoute wires the saved-conversation endpoints.
type ConversationRoute struct {
	handler *conversationhandler.ConversationHandler
}

func NewConversationRoute(handler *conversationhandler.ConversationHandler) *ConversationRoute {
	return &ConversationRoute{handler: handler}
}

func (r *ConversationRoute) RegisterRouter(router gin.IRouter) {
	conversations := router.Group("/conversations")
	{
		conversations.GET("", r.handler.List)
		conversations.POST("", r.handler.Create)
		conversations.GET("/:id", r.handler.Get)
		conversations.PATCH("/:id", r.handler.Rename)
		conversations.PUT("/:id/history", r.handler.UpdateHistory)
		conversations.DELETE("/:id", r.handler.Delete)
	}
}
