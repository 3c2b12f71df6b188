package feedbackhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/domain/feedback"
	"docchat/chat-gateway/internal/infrastructure/observability"
	"docchat/chat-gateway/internal/interfaces/httpserver/middlewares"
	"docchat/chat-gateway/internal/interfaces/httpserver/requests/feedback"
	"docchat/chat-gateway/internal/interfaces/httpserver/responses"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

// FeedbackHandler records answer verdicts.
type FeedbackHandler struct {
	service *feedback.Service
}

func NewFeedbackHandler(service *feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// Submit handles POST /v1/feedback.
func (h *FeedbackHandler) Submit(reqCtx *gin.Context) {
	ctx, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "feedback.submit")
	defer span.End()

	identity, ok := middlewares.IdentityFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "9c07e4af-25d8-4b16-83f9-e1b20d6c47a5")
		return
	}

	var req feedbackrequests.SubmitFeedbackRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(reqCtx, http.StatusBadRequest, err, "invalid request body")
		return
	}

	fb, err := h.service.Capture(ctx, identity.ID, &feedback.Feedback{
		Rating:         feedback.Rating(req.Rating),
		Comment:        req.Comment,
		ConversationID: req.ConversationID,
		MessageIndex:   req.MessageIndex,
	})
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to record feedback")
		return
	}
	reqCtx.JSON(http.StatusCreated, fb)
}

// List handles GET /v1/feedback.
func (h *FeedbackHandler) List(reqCtx *gin.Context) {
	ctx, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "feedback.list")
	defer span.End()

	identity, ok := middlewares.IdentityFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "b1c82f3d-60a7-4de9-95b4-7f38a0d1e6c2")
		return
	}

	items, err := h.service.ListByOwner(ctx, identity.ID)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to list feedback")
		return
	}
	reqCtx.JSON(http.StatusOK, responses.ListResponse[*feedback.Feedback]{
		Total:   len(items),
		Results: items,
	})
}
