package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/config"
	"docchat/chat-gateway/internal/infrastructure"
	middleware "docchat/chat-gateway/internal/interfaces/httpserver/middlewares"
	"docchat/chat-gateway/internal/interfaces/httpserver/routes/auth"
	v1 "docchat/chat-gateway/internal/interfaces/httpserver/routes/v1"
)

type HTTPServer struct {
	engine    *gin.Engine
	infra     *infrastructure.Infrastructure
	v1Route   *v1.V1Route
	authRoute *auth.AuthRoute
	config    *config.Config
}

func NewHttpServer(
	v1Route *v1.V1Route,
	authRoute *auth.AuthRoute,
	infra *infrastructure.Infrastructure,
	cfg *config.Config,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	server := HTTPServer{
		gin.New(),
		infra,
		v1Route,
		authRoute,
		cfg,
	}
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.TracingMiddleware(cfg.ServiceName))
	server.engine.Use(middleware.LoggingMiddleware(infra.Logger))
	server.engine.Use(middleware.CORSMiddleware())

	// Root health check (for load balancers that probe the bare path)
	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server.engine.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	return &server
}

func (httpServer *HTTPServer) Run() error {
	// Public routes (no identity required)
	root := httpServer.engine.Group("/")

	// Protected routes require a JWT or an anonymous id header.
	protected := httpServer.engine.Group("/")
	protected.Use(
		middleware.IdentityMiddleware(httpServer.infra.TokenValidator, httpServer.infra.Logger),
		middleware.RateLimitMiddleware(httpServer.config.RateLimitPerMinute),
	)

	httpServer.authRoute.RegisterRouter(root)
	httpServer.v1Route.RegisterPublicRouter(root)

	httpServer.v1Route.RegisterRouter(protected)

	if err := httpServer.engine.Run(fmt.Sprintf(":%d", httpServer.config.HTTPPort)); err != nil {
		return err
	}
	return nil
}
