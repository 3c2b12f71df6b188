package identityhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/infrastructure/observability"
	"docchat/chat-gateway/internal/interfaces/httpserver/responses"
	"docchat/chat-gateway/internal/utils/idgen"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

// IdentityHandler mints anonymous identities. The browser persists the
// token and replays it on every request; all stored state keys off it.
type IdentityHandler struct{}

func NewIdentityHandler() *IdentityHandler {
	return &IdentityHandler{}
}

type anonymousIdentityResponse struct {
	AnonymousID string `json:"anonymousId"`
}

// CreateAnonymous handles POST /v1/auth/anonymous.
func (h *IdentityHandler) CreateAnonymous(reqCtx *gin.Context) {
	_, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "identity.create_anonymous")
	defer span.End()

	anonymousID, err := idgen.GenerateSecureID("anon", 24)
	if err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInternal, "failed to generate identity", "4f16b8da-0c72-45e9-a3d1-86b5f2c09e73")
		return
	}
	reqCtx.JSON(http.StatusCreated, anonymousIdentityResponse{AnonymousID: anonymousID})
}
