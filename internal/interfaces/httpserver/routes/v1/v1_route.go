package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/config"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes/v1/chat"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes/v1/conversation"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes/v1/document"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes/v1/feedback"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes/v1/usage"
)

type V1Route struct {
	chat         *chat.ChatRoute
	conversation *conversation.ConversationRoute
	usage        *usage.UsageRoute
	feedback     *feedback.FeedbackRoute
	document     *document.DocumentRoute
}

func NewV1Route(
	chat *chat.ChatRoute,
	conversation *conversation.ConversationRoute,
	usage *usage.UsageRoute,
	feedback *feedback.FeedbackRoute,
	document *document.DocumentRoute,
) *V1Route {
	return &V1Route{
		chat,
		conversation,
		usage,
		feedback,
		document,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")

	v1Route.chat.RegisterRouter(v1Router)
	v1Route.conversation.RegisterRouter(v1Router)
	v1Route.usage.RegisterRouter(v1Router)
	v1Route.feedback.RegisterRouter(v1Router)
	v1Route.document.RegisterRouter(v1Router)
}

// RegisterPublicRouter registers endpoints that do not require authentication.
func (v1Route *V1Route) RegisterPublicRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/version", GetVersion)
	v1Router.GET("/healthz", GetHealthz)
	v1Router.GET("/readyz", GetReadyz)
}

// GetVersion returns the build version and environment reload timestamp.
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":         config.Version,
		"env_reloaded_at": config.GetEnvReloadedAt().Format("2006-01-02T15:04:05Z07:00"),
	})
}

// GetHealthz reports liveness for orchestrators.
func GetHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetReadyz reports readiness to accept traffic.
func GetReadyz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
