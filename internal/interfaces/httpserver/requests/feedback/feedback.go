package feedbackrequests

// SubmitFeedbackRequest represents the request to record answer feedback
type SubmitFeedbackRequest struct {
	Rating         string `json:"rating" binding:"required,oneof=up down"`
	Comment        string `json:"comment,omitempty" binding:"max=4000"`
	ConversationID string `json:"conversationId,omitempty"`
	MessageIndex   *int   `json:"messageIndex,omitempty"`
}
