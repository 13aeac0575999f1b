package postgres

import (
	"context"
	"errors"
	"time"

	feedbackDatamodel "github.com/frahmantamala/fleet-management/internal/core/datamodel/feedback"
	"github.com/frahmantamala/fleet-management/internal/feedback"
	"gorm.io/gorm"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) feedback.Repository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *feedback.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback.ToDataModel(f)).Error
}

func (r *FeedbackRepository) GetByID(ctx context.Context, id string) (*feedback.Feedback, error) {
	var row feedbackDatamodel.Feedback
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, feedback.ErrFeedbackNotFound
		}
		return nil, err
	}
	return feedback.FromDataModel(&row), nil
}

func (r *FeedbackRepository) List(ctx context.Context) ([]*feedback.Feedback, error) {
	var rows []feedbackDatamodel.Feedback
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]*feedback.Feedback, 0, len(rows))
	for i := range rows {
		items = append(items, feedback.FromDataModel(&rows[i]))
	}
	return items, nil
}

func (r *FeedbackRepository) Respond(ctx context.Context, id, response string) error {
	result := r.db.WithContext(ctx).
		Model(&feedbackDatamodel.Feedback{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"response":   response,
			"status":     string(feedback.StatusResponded),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return feedback.ErrFeedbackNotFound
	}
	return nil
}
