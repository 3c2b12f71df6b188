package conversation

import (
	"context"
	"strings"
	"time"

	"docchat/chat-gateway/internal/domain/chat"
	"docchat/chat-gateway/internal/infrastructure/metrics"
	"docchat/chat-gateway/internal/utils/idgen"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

const maxTitleLength = 256

// Service handles business logic for saved conversations.
type Service struct {
	repo Repository
}

// NewService creates a new conversation service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create persists a new conversation for an owner and returns the created
// record with its generated id.
func (s *Service) Create(ctx context.Context, ownerID, title string, history []chat.Message) (*Conversation, error) {
	if ownerID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "owner identity required", nil, "")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	publicID, err := idgen.GenerateSecureID("conv", 16)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to generate conversation ID")
	}

	conv := NewConversation(publicID, ownerID, title, history)
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, "failed to create conversation", err, "")
	}

	metrics.ConversationsCreatedTotal.Inc()
	return conv, nil
}

// GetByPublicIDAndOwner retrieves a conversation and validates ownership.
// A conversation owned by someone else is reported as not found.
func (s *Service) GetByPublicIDAndOwner(ctx context.Context, publicID, ownerID string) (*Conversation, error) {
	if publicID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "conversation ID required", nil, "")
	}

	conv, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	if conv.OwnerID != ownerID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "")
	}
	return conv, nil
}

// ListByOwner returns the owner's conversations, most recent first.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*Conversation, error) {
	if ownerID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "owner identity required", nil, "")
	}
	conversations, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, "failed to list conversations", err, "")
	}
	return conversations, nil
}

// Rename updates the display name only.
func (s *Service) Rename(ctx context.Context, ownerID, publicID, newTitle string) (*Conversation, error) {
	if err := validateTitle(newTitle); err != nil {
		return nil, err
	}
	conv, err := s.GetByPublicIDAndOwner(ctx, publicID, ownerID)
	if err != nil {
		return nil, err
	}

	conv.Title = newTitle
	conv.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, conv); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, "failed to rename conversation", err, "")
	}
	return conv, nil
}

// UpdateHistory replaces the stored history wholesale.
func (s *Service) UpdateHistory(ctx context.Context, ownerID, publicID string, history []chat.Message) (*Conversation, error) {
	conv, err := s.GetByPublicIDAndOwner(ctx, publicID, ownerID)
	if err != nil {
		return nil, err
	}

	conv.History = history
	conv.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, conv); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, "failed to update history", err, "")
	}
	return conv, nil
}

// Delete removes the record after an ownership check.
func (s *Service) Delete(ctx context.Context, ownerID, publicID string) error {
	conv, err := s.GetByPublicIDAndOwner(ctx, publicID, ownerID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, conv.ID); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, "failed to delete conversation", err, "")
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "title cannot be empty", nil, "")
	}
	if len(title) > maxTitleLength {
		return platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "title too long", nil, "")
	}
	return nil
}
