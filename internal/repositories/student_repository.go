package repositories

import (
	"context"

	"github.com/smart-evolve/grading-service/internal/models"
	"gorm.io/gorm"
)

// StudentRepository interface for roster operations
type StudentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, student *models.Student) error
	GetByUSN(ctx context.Context, tx *gorm.DB, usn string) (*models.Student, error)
	List(ctx context.Context, tx *gorm.DB, filters StudentFilters) ([]*models.Student, int64, error)
	ExistsByUSN(ctx context.Context, tx *gorm.DB, usn string) (bool, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}
