package chatrequests

import (
	"context"
	"strings"

	"docchat/chat-gateway/internal/domain/chat"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

// RelayRequest is the browser's relay payload: the full transcript with the
// new question as its final message.
type RelayRequest struct {
	Messages           []chat.Message `json:"messages" binding:"required"`
	ConversationID     *string        `json:"conversationId,omitempty"`
	OutputLanguageHint string         `json:"outputLanguageHint,omitempty"`
}

// Validate checks the transcript shape: it must be non-empty and end with a
// user turn carrying non-blank text.
func (r *RelayRequest) Validate(ctx context.Context) error {
	if len(r.Messages) == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "messages must not be empty", nil, "")
	}
	last := r.Messages[len(r.Messages)-1]
	if chat.NormalizeRole(string(last.Role)) != chat.RoleUser {
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "last message must be a user turn", nil, "")
	}
	if strings.TrimSpace(last.Text) == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "last message must carry text", nil, "")
	}
	return nil
}

// Question returns the text of the final user turn.
func (r *RelayRequest) Question() string {
	return r.Messages[len(r.Messages)-1].Text
}
