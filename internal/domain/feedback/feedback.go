package feedback

import (
	"context"
	"time"
)

// Rating is the reader's verdict on one assistant answer.
type Rating string

const (
	RatingUp   Rating = "up"
	RatingDown Rating = "down"
)

// Valid reports whether a rating is one of the accepted values.
func (r Rating) Valid() bool {
	return r == RatingUp || r == RatingDown
}

// Feedback is one captured verdict. MessageIndex points at the rated
// assistant turn inside the conversation transcript; nil when the feedback
// concerns the conversation as a whole.
type Feedback struct {
	ID             uint      `json:"-"`
	PublicID       string    `json:"id"`
	OwnerID        string    `json:"-"`
	ConversationID string    `json:"conversationId,omitempty"`
	MessageIndex   *int      `json:"messageIndex,omitempty"`
	Rating         Rating    `json:"rating"`
	Comment        string    `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Repository persists captured feedback.
type Repository interface {
	Create(ctx context.Context, feedback *Feedback) error
	FindByOwner(ctx context.Context, ownerID string) ([]*Feedback, error)
}
