package chat

import (
	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/interfaces/httpserver/handlers/chathandler"
)

// ChatRoute wires the relay endpoint.
type ChatRoute struct {
	relayHandler *chathandler.RelayHandler
}

func NewChatRoute(relayHandler *chathandler.RelayHandler) *ChatRoute {
	return &ChatRoute{relayHandler: relayHandler}
}

func (r *ChatRoute) RegisterRouter(router gin.IRouter) {
	chatRouter := router.Group("/chat")
	chatRouter.POST("/relay", r.relayHandler.Relay)
}
