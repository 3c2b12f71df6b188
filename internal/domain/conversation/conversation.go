package conversation

import (
	"context"
	"time"

	"docchat/chat-gateway/internal/domain/chat"
)

// Conversation is a saved transcript owned by exactly one identity. History
// is ordered by turn and is replaced wholesale on update; the sync layer
// never merges histories across identities.
type Conversation struct {
	ID       uint           `json:"-"`
	PublicID string         `json:"id"`
	OwnerID  string         `json:"-"`
	Title    string         `json:"title"`
	History  []chat.Message `json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayCreatedAt renders the creation time the way the UI shows it.
func (c *Conversation) DisplayCreatedAt() string {
	return c.CreatedAt.Format("Jan 2, 2006, 3:04 PM")
}

// Clone returns a deep copy. The cache layer snapshots lists before
// optimistic mutations and must not alias live history slices.
func (c *Conversation) Clone() *Conversation {
	cp := *c
	if c.History != nil {
		cp.History = make([]chat.Message, len(c.History))
		copy(cp.History, c.History)
	}
	return &cp
}

// Filter narrows repository lookups.
type Filter struct {
	ID       *uint
	PublicID *string
	OwnerID  *string
}

// Repository is the durable store boundary. The concrete implementation is
// substitutable; ownership keys every operation.
type Repository interface {
	Create(ctx context.Context, conv *Conversation) error
	FindByOwner(ctx context.Context, ownerID string) ([]*Conversation, error)
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	Update(ctx context.Context, conv *Conversation) error
	Delete(ctx context.Context, id uint) error
}

// NewConversation builds an unsaved conversation for an owner.
func NewConversation(publicID, ownerID, title string, history []chat.Message) *Conversation {
	now := time.Now()
	return &Conversation{
		PublicID:  publicID,
		OwnerID:   ownerID,
		Title:     title,
		History:   history,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
