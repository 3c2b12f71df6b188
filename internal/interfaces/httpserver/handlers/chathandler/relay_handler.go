package chathandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"docchat/chat-gateway/internal/config"
	"docchat/chat-gateway/internal/domain/chat"
	"docchat/chat-gateway/internal/domain/conversation"
	"docchat/chat-gateway/internal/domain/usage"
	"docchat/chat-gateway/internal/infrastructure/metrics"
	"docchat/chat-gateway/internal/infrastructure/observability"
	"docchat/chat-gateway/internal/infrastructure/ragclient"
	"docchat/chat-gateway/internal/interfaces/httpserver/middlewares"
	"docchat/chat-gateway/internal/interfaces/httpserver/requests/chat"
	"docchat/chat-gateway/internal/interfaces/httpserver/responses"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

const emptyAnswerFallback = "No response available"

// RelayHandler forwards browser questions to the document-QA backend and
// streams the answer back as framed text.
type RelayHandler struct {
	ragClient    *ragclient.Client
	usageService *usage.Service
	autosaves    *conversation.AutosaveManager
	frameDelay   time.Duration
}

func NewRelayHandler(
	ragClient *ragclient.Client,
	usageService *usage.Service,
	autosaves *conversation.AutosaveManager,
	cfg *config.Config,
) *RelayHandler {
	return &RelayHandler{
		ragClient:    ragClient,
		usageService: usageService,
		autosaves:    autosaves,
		frameDelay:   cfg.StreamFrameDelay,
	}
}

// Relay handles POST /v1/chat/relay. The whole backend answer is fetched,
// cleaned of citation markers, then emitted as word frames so the browser
// renders it progressively. Backend failures pass through with the
// backend's own status code; a quota rejection reaches the browser as the
// same 429 the backend produced.
func (h *RelayHandler) Relay(reqCtx *gin.Context) {
	started := time.Now()
	ctx, span := observability.StartSpan(reqCtx.Request.Context(), "chat-gateway", "relay.query")
	defer span.End()

	identity, ok := middlewares.IdentityFromContext(reqCtx)
	if !ok || identity.ID == "" {
		metrics.ObserveRelay(http.StatusBadRequest, time.Since(started).Seconds())
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "Missing identity", "f8f1a2fe-3b0c-4a62-97f4-0f52c4d0a9b1")
		return
	}

	var req chatrequests.RelayRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		metrics.ObserveRelay(http.StatusBadRequest, time.Since(started).Seconds())
		responses.HandleErrorWithStatus(reqCtx, http.StatusBadRequest, err, "invalid request body")
		return
	}
	if err := req.Validate(ctx); err != nil {
		metrics.ObserveRelay(http.StatusBadRequest, time.Since(started).Seconds())
		responses.HandleError(reqCtx, err, "invalid message shape")
		return
	}

	if err := h.usageService.CheckAllowed(ctx, identity.ID); err != nil {
		metrics.ObserveRelay(http.StatusTooManyRequests, time.Since(started).Seconds())
		responses.HandleError(reqCtx, err, "Daily limit reached")
		return
	}

	observability.AddSpanAttributes(ctx,
		attribute.String("caller.id", identity.ID),
		attribute.Int("transcript.length", len(req.Messages)),
	)

	saver := h.autosaves.For(identity.ID)
	h.bindSaver(saver, &req)
	saver.SetComposing(ctx, true)
	saver.Observe(ctx, req.Messages)

	resp, err := h.ragClient.Query(ctx, middlewares.RawTokenFromContext(reqCtx), ragclient.QueryRequest{
		Query:               req.Question(),
		CallerID:            identity.ID,
		ConversationHistory: chat.PriorTurns(req.Messages),
		OutputLanguageHint:  req.OutputLanguageHint,
	})
	if err != nil {
		saver.SetComposing(context.WithoutCancel(ctx), false)
		observability.RecordError(ctx, err)

		var backendErr *ragclient.BackendError
		if errors.As(err, &backendErr) {
			metrics.ObserveRelay(backendErr.StatusCode, time.Since(started).Seconds())
			reqCtx.AbortWithStatusJSON(backendErr.StatusCode, gin.H{"error": backendErr.Detail})
			return
		}
		// No backend status to pass through: surface a plain 500 without
		// leaking transport detail.
		metrics.ObserveRelay(http.StatusInternalServerError, time.Since(started).Seconds())
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeInternal, "backend unavailable", "2f6a8d41-9c53-4b7e-a0d8-5e1b3c9f7a24")
		return
	}

	answer := chat.StripCitationMarkers(resp.Answer)
	if strings.TrimSpace(answer) == "" {
		answer = emptyAnswerFallback
	}

	h.streamAnswer(reqCtx, answer)

	// The backend counted this query; refetch the snapshot on next check.
	h.usageService.Invalidate(identity.ID)

	full := append(append([]chat.Message(nil), req.Messages...), chat.Message{
		Role: chat.RoleAssistant,
		Text: answer,
	})
	detached := context.WithoutCancel(ctx)
	saver.SetComposing(detached, false)
	saver.Observe(detached, full)

	metrics.ObserveRelay(http.StatusOK, time.Since(started).Seconds())
}

// bindSaver points the autosaver at the right record: an explicit
// conversation id rebinds, a fresh one-question transcript starts over.
func (h *RelayHandler) bindSaver(saver *conversation.Autosaver, req *chatrequests.RelayRequest) {
	if req.ConversationID != nil && *req.ConversationID != "" {
		if saver.ConversationID() != *req.ConversationID {
			saver.Load(&conversation.Conversation{
				PublicID: *req.ConversationID,
				History:  req.Messages[:len(req.Messages)-1],
			})
		}
		return
	}
	if len(req.Messages) == 1 {
		saver.Reset()
	}
}

// streamAnswer writes the answer as one frame per token: "0:" followed by
// the JSON-encoded fragment and a newline. Concatenating the decoded
// fragments reproduces the answer exactly.
func (h *RelayHandler) streamAnswer(reqCtx *gin.Context, answer string) {
	flusher, canFlush := middlewares.PrepareTextStream(reqCtx)
	reqCtx.Status(http.StatusOK)

	for _, token := range chat.Tokenize(answer) {
		select {
		case <-reqCtx.Request.Context().Done():
			return
		default:
		}

		encoded, err := json.Marshal(token)
		if err != nil {
			continue
		}
		if _, err := reqCtx.Writer.Write([]byte("0:")); err != nil {
			return
		}
		if _, err := reqCtx.Writer.Write(encoded); err != nil {
			return
		}
		if _, err := reqCtx.Writer.Write([]byte("\n")); err != nil {
			return
		}
		metrics.RelayFramesTotal.Inc()
		if canFlush {
			flusher.Flush()
		}
		if h.frameDelay > 0 {
			time.Sleep(h.frameDelay)
		}
	}
}
