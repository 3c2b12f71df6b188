package auth

import (
	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/interfaces/httpserver/handlers/identityhandler"
)

// AuthRoute handles identity bootstrap routes.
type AuthRoute struct {
	identityHandler *identityhandler.IdentityHandler
}

func NewAuthRoute(identityHandler *identityhandler.IdentityHandler) *AuthRoute {
	return &AuthRoute{identityHandler: identityHandler}
}

// RegisterRouter registers identity routes. Anonymous identity creation is
// public so first-time visitors can obtain a caller id before any auth.
func (a *AuthRoute) RegisterRouter(router gin.IRouter) {
	router.POST("/auth/anonymous", a.identityHandler.CreateAnonymous)
}
