package usagehandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/domain/usage"
	"docchat/chat-gateway/internal/infrastructure/observability"
	"docchat/chat-gateway/internal/interfaces/httpserver/middlewares"
	"docchat/chat-gateway/internal/interfaces/httpserver/responses"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

// UsageHandler reports the caller's quota standing.
type UsageHandler struct {
	service *usage.Service
}

func NewUsageHandler(service *usage.Service) *UsageHandler {
	return &UsageHandler{service: service}
}

// usageResponse augments the snapshot with the derived blocked flag the
// browser uses to disable its input.
type usageResponse struct {
	usage.Snapshot
	Blocked bool `json:"blocked"`
}

// Get handles GET /v1/usage.
func (h *UsageHandler) Get(reqCtx *gin.Context) {
	ctx, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "usage.get")
	defer span.End()

	identity, ok := middlewares.IdentityFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "83b5f6d0-14ce-4e29-9a77-bd62c1e048f3")
		return
	}

	snap, err := h.service.Current(ctx, identity.ID)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to fetch usage")
		return
	}

	reqCtx.JSON(http.StatusOK, usageResponse{Snapshot: snap, Blocked: snap.Blocked()})
}
