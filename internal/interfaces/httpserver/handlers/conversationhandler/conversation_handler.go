package conversationhandler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docchat/chat-gateway/internal/domain/conversation"
	"docchat/chat-gateway/internal/infrastructure/observability"
	"docchat/chat-gateway/internal/interfaces/httpserver/middlewares"
	"docchat/chat-gateway/internal/interfaces/httpserver/requests/conversation"
	"docchat/chat-gateway/internal/interfaces/httpserver/responses"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

// ConversationHandler serves the cached conversation list and its
// mutations. Reads come from the cache layer; writes go through its
// optimistic path so the browser sees updates immediately.
type ConversationHandler struct {
	cache   *conversation.Cache
	service *conversation.Service
}

func NewConversationHandler(cache *conversation.Cache, service *conversation.Service) *ConversationHandler {
	return &ConversationHandler{cache: cache, service: service}
}

// List handles GET /v1/conversations.
func (h *ConversationHandler) List(reqCtx *gin.Context) {
	ctx, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "conversation.list")
	defer span.End()

	identity, ok := middlewares.IdentityFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "1df3c2ab-9e41-4b5f-8420-6f0a7b9d3c12")
		return
	}

	list, stale, err := h.cache.List(ctx, identity.ID)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to list conversations")
		return
	}

	reqCtx.JSON(http.StatusOK, responses.ListResponse[*conversation.Conversation]{
		Total:   len(list),
		Results: list,
		Stale:   stale,
	})
}

// Get handles GET /v1/conversations/:id.
func (h *ConversationHandler) Get(reqCtx *gin.Context) {
	ctx, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "conversation.get")
	defer span.End()

	identity, ok := middlewares.IdentityFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "7a2b91cd-03f4-48e2-b6d9-5c88e1f0a423")
		return
	}

	conv, err := h.service.GetByPublicIDAndOwner(ctx, reqCtx.Param("id"), identity.ID)
	if err != nil {
		responses.HandleError(reqCtx, err, "conversation not found")
		return
	}
	reqCtx.JSON(http.StatusOK, conv)
}

// Create handles POST /v1/conversations.
func (h *ConversationHandler) Create(reqCtx *gin.Context) {
	ctx, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "conversation.create")
	defer span.End()

	identity, ok := middlewares.IdentityFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "c4f0de82-7b63-49a1-9e05-2d17a8b4c9f6")
		return
	}

	var req conversationrequests.CreateConversationRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(reqCtx, http.StatusBadRequest, err, "invalid request body")
		return
	}

	title := ""
	if req.Title != nil {
		title = *req.Title
	}
	if title == "" {
		title = conversation.DefaultTitle(req.History, time.Now())
	}

	conv, err := h.cache.Create(ctx, identity.ID, title, req.History)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to create conversation")
		return
	}
	reqCtx.JSON(http.StatusCreated, conv)
}

// Rename handles PATCH /v1/conversations/:id.
func (h *ConversationHandler) Rename(reqCtx *gin.Context) {
	ctx, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "conversation.rename")
	defer span.End()

	identity, ok := middlewares.IdentityFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "e91d3baf-48c2-4f07-a6b8-0d25c7e19a34")
		return
	}

	var req conversationrequests.RenameConversationRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(reqCtx, http.StatusBadRequest, err, "invalid request body")
		return
	}

	if err := h.cache.Rename(ctx, identity.ID, reqCtx.Param("id"), req.Title); err != nil {
		responses.HandleError(reqCtx, err, "failed to rename conversation")
		return
	}
	reqCtx.Status(http.StatusNoContent)
}

// UpdateHistory handles PUT /v1/conversations/:id/history.
func (h *ConversationHandler) UpdateHistory(reqCtx *gin.Context) {
	ctx, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "conversation.update_history")
	defer span.End()

	identity, ok := middlewares.IdentityFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "0b6f41dc-92e5-47a3-8d10-3c59ea72b8f1")
		return
	}

	var req conversationrequests.UpdateHistoryRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleErrorWithStatus(reqCtx, http.StatusBadRequest, err, "invalid request body")
		return
	}

	if err := h.cache.UpdateHistory(ctx, identity.ID, reqCtx.Param("id"), req.History); err != nil {
		responses.HandleError(reqCtx, err, "failed to update history")
		return
	}
	reqCtx.Status(http.StatusNoContent)
}

// Delete handles DELETE /v1/conversations/:id.
func (h *ConversationHandler) Delete(reqCtx *gin.Context) {
	ctx, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "conversation.delete")
	defer span.End()

	identity, ok := middlewares.IdentityFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "5d8a20cb-61f9-4e84-ba37-9f04d6c3e7a2")
		return
	}

	if err := h.cache.Delete(ctx, identity.ID, reqCtx.Param("id")); err != nil {
		responses.HandleError(reqCtx, err, "failed to delete conversation")
		return
	}
	reqCtx.Status(http.StatusNoContent)
}
