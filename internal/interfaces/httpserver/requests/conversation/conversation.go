package conversationrequests

import "docchat/chat-gateway/internal/domain/chat"

// CreateConversationRequest represents the request to create a conversation
type CreateConversationRequest struct {
	Title   *string        `json:"title,omitempty"`
	History []chat.Message `json:"history,omitempty"`
}

// RenameConversationRequest represents the request to rename a conversation
type RenameConversationRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateHistoryRequest replaces a conversation's stored history wholesale
type UpdateHistoryRequest struct {
	History []chat.Message `json:"history" binding:"required"`
}
