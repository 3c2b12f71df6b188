package usage

import (
	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/interfaces/httpserver/handlers/usagehandler"
)

// UsageRoute handles usage-related routes
type UsageRoute struct {
	handler *usagehandler.UsageHandler
}

func NewUsageRoute(handler *usagehandler.UsageHandler) *UsageRoute {
	return &UsageRoute{handler: handler}
}

func (r *UsageRoute) RegisterRouter(router gin.IRouter) {
	router.GET("/usage", r.handler.Get)
}
