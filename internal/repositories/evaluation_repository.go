package repositories

import (
	"context"

	"github.com/smart-evolve/grading-service/internal/models"
	"gorm.io/gorm"
)

// EvaluationRepository interface for evaluation persistence
type EvaluationRepository interface {
	// CRUD
	Create(ctx context.Context, tx *gorm.DB, evaluation *models.Evaluation) error
	Update(ctx context.Context, tx *gorm.DB, evaluation *models.Evaluation) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Evaluation, error)

	// Per-student lookups
	GetLatestByUSN(ctx context.Context, tx *gorm.DB, usn string) (*models.Evaluation, error)
	ListByUSN(ctx context.Context, tx *gorm.DB, usn string) ([]*models.Evaluation, error)

	// Listings
	List(ctx context.Context, tx *gorm.DB, filters EvaluationFilters) ([]*models.Evaluation, int64, error)
	GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Evaluation, error)

	// Counts
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, status models.EvaluationStatus) (int64, error)
}
