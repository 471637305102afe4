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

type evaluationRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	helpers      *SharedHelpers
}

func NewEvaluationPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.EvaluationRepository {
	return &evaluationRepository{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
		helpers:      NewSharedHelpers(db),
	}
}

func (r *evaluationRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *evaluationRepository) Create(ctx context.Context, tx *gorm.DB, evaluation *models.Evaluation) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Create(evaluation).Error; err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	cache.InvalidateEvaluationCache(ctx, r.cacheManager, evaluation.USN)
	return nil
}

func (r *evaluationRepository) Update(ctx context.Context, tx *gorm.DB, evaluation *models.Evaluation) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Save(evaluation).Error; err != nil {
		return fmt.Errorf("failed to update evaluation %d: %w", evaluation.ID, err)
	}

	cache.InvalidateEvaluationCache(ctx, r.cacheManager, evaluation.USN)
	return nil
}

func (r *evaluationRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Evaluation, error) {
	db := r.getDB(tx)

	var evaluation models.Evaluation
	if err := db.WithContext(ctx).First(&evaluation, id).Error; err != nil {
		return nil, err
	}

	return &evaluation, nil
}

// GetLatestByUSN returns the most recent evaluation for a student. Served
// from cache when possible since the report view hits this repeatedly.
func (r *evaluationRepository) GetLatestByUSN(ctx context.Context, tx *gorm.DB, usn string) (*models.Evaluation, error) {
	db := r.getDB(tx)

	// Bypass cache inside transactions
	if tx != nil {
		return r.fetchLatestByUSN(ctx, db, usn)
	}

	var evaluation models.Evaluation
	cacheKey := fmt.Sprintf("usn:%s", usn)

	err := r.cacheManager.Evaluation.CacheOrExecute(ctx, cacheKey, &evaluation, cache.EvaluationCacheConfig.TTL, func() (interface{}, error) {
		return r.fetchLatestByUSN(ctx, db, usn)
	})
	if err != nil {
		return nil, err
	}

	return &evaluation, nil
}

func (r *evaluationRepository) fetchLatestByUSN(ctx context.Context, db *gorm.DB, usn string) (*models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := db.WithContext(ctx).
		Where("usn = ?", usn).
		Order("created_at DESC").
		First(&evaluation).Error; err != nil {
		return nil, err
	}
	return &evaluation, nil
}

func (r *evaluationRepository) ListByUSN(ctx context.Context, tx *gorm.DB, usn string) ([]*models.Evaluation, error) {
	db := r.getDB(tx)

	var evaluations []*models.Evaluation
	if err := db.WithContext(ctx).
		Where("usn = ?", usn).
		Order("created_at DESC").
		Find(&evaluations).Error; err != nil {
		return nil, fmt.Errorf("failed to list evaluations for %s: %w", usn, err)
	}

	return evaluations, nil
}

func (r *evaluationRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.EvaluationFilters) ([]*models.Evaluation, int64, error) {
	db := r.getDB(tx)

	query := db.WithContext(ctx).Model(&models.Evaluation{})
	query = r.helpers.ApplyEvaluationFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count evaluations: %w", err)
	}

	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var evaluations []*models.Evaluation
	if err := query.Find(&evaluations).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list evaluations: %w", err)
	}

	return evaluations, total, nil
}

func (r *evaluationRepository) GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Evaluation, error) {
	db := r.getDB(tx)

	var evaluations []*models.Evaluation
	if err := db.WithContext(ctx).
		Where("status = ?", models.EvaluationCompleted).
		Order("created_at DESC").
		Limit(limit).
		Find(&evaluations).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent evaluations: %w", err)
	}

	return evaluations, nil
}

func (r *evaluationRepository) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)

	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count evaluations: %w", err)
	}

	return count, nil
}

func (r *evaluationRepository) CountByStatus(ctx context.Context, tx *gorm.DB, status models.EvaluationStatus) (int64, error) {
	db := r.getDB(tx)

	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count evaluations by status: %w", err)
	}

	return count, nil
}
