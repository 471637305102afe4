package repositories

import (
	"context"

	"github.com/smart-evolve/grading-service/internal/models"
	"gorm.io/gorm"
)

// FeedbackRepository interface for user feedback operations
type FeedbackRepository interface {
	Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error
	List(ctx context.Context, tx *gorm.DB, filters FeedbackFilters) ([]*models.Feedback, int64, error)
	AverageRating(ctx context.Context, tx *gorm.DB) (float64, error)
}
