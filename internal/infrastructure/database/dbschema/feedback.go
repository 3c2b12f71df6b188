package dbschema

import (
	"docchat/chat-gateway/internal/domain/feedback"
	"docchat/chat-gateway/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Feedback{})
}

// Feedback represents the database schema for captured answer feedback
type Feedback struct {
	BaseModel
	PublicID       string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	OwnerID        string  `gorm:"type:varchar(64);index;not null"`
	ConversationID *string `gorm:"type:varchar(50);index"`
	MessageIndex   *int
	Rating         string  `gorm:"type:varchar(10);not null"`
	Comment        *string `gorm:"type:text"`
}

// NewSchemaFeedback converts a domain feedback record to its database entity
func NewSchemaFeedback(fb *feedback.Feedback) *Feedback {
	entity := &Feedback{
		PublicID:     fb.PublicID,
		OwnerID:      fb.OwnerID,
		MessageIndex: fb.MessageIndex,
		Rating:       string(fb.Rating),
	}
	if fb.ConversationID != "" {
		entity.ConversationID = &fb.ConversationID
	}
	if fb.Comment != "" {
		entity.Comment = &fb.Comment
	}
	entity.ID = fb.ID
	entity.CreatedAt = fb.CreatedAt
	return entity
}

// EtoD converts the database entity to its domain representation
func (e *Feedback) EtoD() *feedback.Feedback {
	fb := &feedback.Feedback{
		ID:           e.ID,
		PublicID:     e.PublicID,
		OwnerID:      e.OwnerID,
		MessageIndex: e.MessageIndex,
		Rating:       feedback.Rating(e.Rating),
		CreatedAt:    e.CreatedAt,
	}
	if e.ConversationID != nil {
		fb.ConversationID = *e.ConversationID
	}
	if e.Comment != nil {
		fb.Comment = *e.Comment
	}
	return fb
}
