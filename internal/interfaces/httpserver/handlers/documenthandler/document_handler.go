package documenthandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/infrastructure/observability"
	"docchat/chat-gateway/internal/infrastructure/ragclient"
	"docchat/chat-gateway/internal/interfaces/httpserver/middlewares"
	"docchat/chat-gateway/internal/interfaces/httpserver/responses"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

// DocumentHandler relays document index queries to the backend. The
// gateway adds identity and passes the report through untouched.
type DocumentHandler struct {
	ragClient *ragclient.Client
}

func NewDocumentHandler(ragClient *ragclient.Client) *DocumentHandler {
	return &DocumentHandler{ragClient: ragClient}
}

// Upload handles POST /v1/documents. The multipart body streams through to
// the backend as-is; indexing happens there.
func (h *DocumentHandler) Upload(reqCtx *gin.Context) {
	ctx, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "documents.upload")
	defer span.End()

	if _, ok := middlewares.IdentityFromContext(reqCtx); !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "b4c7f0e2-9d15-4a63-8f2b-1c5d6e7a8903")
		return
	}

	raw, err := h.ragClient.UploadDocument(
		ctx,
		middlewares.RawTokenFromContext(reqCtx),
		reqCtx.ContentType(),
		reqCtx.Request.Body,
	)
	if err != nil {
		var backendErr *ragclient.BackendError
		if errors.As(err, &backendErr) {
			reqCtx.AbortWithStatusJSON(backendErr.StatusCode, gin.H{"error": backendErr.Detail})
			return
		}
		responses.HandleError(reqCtx, err, "backend unavailable")
		return
	}
	reqCtx.Data(http.StatusOK, "application/json", raw)
}

// Status handles GET /v1/documents/status.
func (h *DocumentHandler) Status(reqCtx *gin.Context) {
	ctx, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "documents.status")
	defer span.End()

	if _, ok := middlewares.IdentityFromContext(reqCtx); !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "6e93a1cf-4d20-48b7-92e5-0a81f3d7c264")
		return
	}

	raw, err := h.ragClient.DocumentStatus(ctx, middlewares.RawTokenFromContext(reqCtx))
	if err != nil {
		var backendErr *ragclient.BackendError
		if errors.As(err, &backendErr) {
			reqCtx.AbortWithStatusJSON(backendErr.StatusCode, gin.H{"error": backendErr.Detail})
			return
		}
		responses.HandleError(reqCtx, err, "backend unavailable")
		return
	}
	reqCtx.Data(http.StatusOK, "application/json", raw)
}
