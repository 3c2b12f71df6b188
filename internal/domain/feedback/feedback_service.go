package feedback

import (
	"context"

	"docchat/chat-gateway/internal/utils/idgen"
	"docchat/chat-gateway/internal/utils/platformerrors"
)

const commentMaxLength = 4000

// Service validates and records answer feedback.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Capture validates and stores one feedback record, assigning it a public id.
func (s *Service) Capture(ctx context.Context, ownerID string, fb *Feedback) (*Feedback, error) {
	if !fb.Rating.Valid() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "rating must be up or down", nil, "")
	}
	if len(fb.Comment) > commentMaxLength {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "comment too long", nil, "")
	}
	if fb.MessageIndex != nil && *fb.MessageIndex < 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "messageIndex must be non-negative", nil, "")
	}

	publicID, err := idgen.GenerateSecureID("fb", 16)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate feedback id", err, "")
	}
	fb.PublicID = publicID
	fb.OwnerID = ownerID

	if err := s.repo.Create(ctx, fb); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, "failed to store feedback", err, "")
	}
	return fb, nil
}

// ListByOwner returns the owner's captured feedback.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*Feedback, error) {
	items, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError, "failed to list feedback", err, "")
	}
	return items, nil
}
