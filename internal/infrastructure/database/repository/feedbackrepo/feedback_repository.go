package feedbackrepo

import (
	"context"

	"gorm.io/gorm"

	"docchat/chat-gateway/internal/domain/feedback"
	"docchat/chat-gateway/internal/infrastructure/database/dbschema"
	"docchat/chat-gateway/internal/utils/functional"
)

type FeedbackGormRepository struct {
	db *gorm.DB
}

var _ feedback.Repository = (*FeedbackGormRepository)(nil)

func NewFeedbackGormRepository(db *gorm.DB) feedback.Repository {
	return &FeedbackGormRepository{db: db}
}

// Create implements feedback.Repository.
func (repo *FeedbackGormRepository) Create(ctx context.Context, fb *feedback.Feedback) error {
	model := dbschema.NewSchemaFeedback(fb)
	if err := repo.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	fb.ID = model.ID
	fb.CreatedAt = model.CreatedAt
	return nil
}

// FindByOwner implements feedback.Repository.
func (repo *FeedbackGormRepository) FindByOwner(ctx context.Context, ownerID string) ([]*feedback.Feedback, error) {
	var rows []*dbschema.Feedback
	err := repo.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return functional.Map(rows, func(item *dbschema.Feedback) *feedback.Feedback {
		return item.EtoD()
	}), nil
}
