package feedback

import (
	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/interfaces/httpserver/handlers/feedbackhandler"
)

// FeedbackRoute wires answer feedback capture and listing.
type FeedbackRoute struct {
	handler *feedbackhandler.FeedbackHandler
}

func NewFeedbackRoute(handler *feedbackhandler.FeedbackHandler) *FeedbackRoute {
	return &FeedbackRoute{handler: handler}
}

func (r *FeedbackRoute) RegisterRouter(router gin.IRouter) {
	feedback := router.Group("/feedback")
	feedback.POST("", r.handler.Submit)
	feedback.GET("", r.handler.List)
}
