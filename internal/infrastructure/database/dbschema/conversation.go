package dbschema

import (
	"gorm.io/datatypes"

	"docchat/chat-gateway/internal/domain/chat"
	"docchat/chat-gateway/internal/domain/conversation"
	"docchat/chat-gateway/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Conversation{})
}

// Conversation represents the database schema for saved conversations
type Conversation struct {
	BaseModel
	PublicID string                           `gorm:"type:varchar(50);uniqueIndex;not null"`
	OwnerID  string                           `gorm:"type:varchar(64);index:idx_conversation_owner_created;not null"`
	Title    string                           `gorm:"type:varchar(256);not null"`
	History  datatypes.JSONSlice[chat.Message] `gorm:"type:jsonb"`
}

// NewSchemaConversation converts a domain conversation to its database entity
func NewSchemaConversation(conv *conversation.Conversation) *Conversation {
	entity := &Conversation{
		PublicID: conv.PublicID,
		OwnerID:  conv.OwnerID,
		Title:    conv.Title,
		History:  datatypes.NewJSONSlice(conv.History),
	}
	entity.ID = conv.ID
	entity.CreatedAt = conv.CreatedAt
	entity.UpdatedAt = conv.UpdatedAt
	return entity
}

// EtoD converts the database entity to its domain representation
func (e *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:        e.ID,
		PublicID:  e.PublicID,
		OwnerID:   e.OwnerID,
		Title:     e.Title,
		History:   []chat.Message(e.History),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
