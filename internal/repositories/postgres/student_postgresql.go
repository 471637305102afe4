package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/smart-evolve/grading-service/internal/cache"
	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/repositories"
)

type studentRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewStudentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.StudentRepository {
	return &studentRepository{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *studentRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *studentRepository) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}

	cache.InvalidateStudentCache(ctx, r.cacheManager, student.USN)
	return nil
}

func (r *studentRepository) GetByUSN(ctx context.Context, tx *gorm.DB, usn string) (*models.Student, error) {
	db := r.getDB(tx)

	var student models.Student
	if err := db.WithContext(ctx).
		Where("usn = ?", usn).
		First(&student).Error; err != nil {
		return nil, err
	}

	return &student, nil
}

func (r *studentRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	db := r.getDB(tx)

	query := db.WithContext(ctx).Model(&models.Student{})
	if filters.Name != nil {
		query = query.Where("name ILIKE ?", "%"+*filters.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	query = query.Order("usn ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var students []*models.Student
	if err := query.Find(&students).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}

	return students, total, nil
}

// ExistsByUSN is on the evaluation hot path (every upload checks the
// roster), so the result is briefly cached.
func (r *studentRepository) ExistsByUSN(ctx context.Context, tx *gorm.DB, usn string) (bool, error) {
	db := r.getDB(tx)

	if tx == nil {
		cacheKey := fmt.Sprintf("student:%s", usn)
		var exists bool
		err := r.cacheManager.Exists.Get(ctx, cacheKey, &exists)
		if err == nil {
			return exists, nil
		}
	}

	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Student{}).
		Where("usn = ?", usn).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}

	exists := count > 0
	if tx == nil && exists {
		// Only positive results are cached so new students show up immediately
		if err := r.cacheManager.Exists.Set(ctx, fmt.Sprintf("student:%s", usn), exists, cache.ExistsCacheConfig.TTL); err != nil {
			return exists, nil
		}
	}

	return exists, nil
}

func (r *studentRepository) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)

	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Student{}).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}

	return count, nil
}
