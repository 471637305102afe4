package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/repositories"
)

type feedbackRepository struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewFeedbackPostgreSQL(db *gorm.DB) repositories.FeedbackRepository {
	return &feedbackRepository{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *feedbackRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *feedbackRepository) Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	db := r.getDB(tx)

	if err := db.WithContext(ctx).Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	return nil
}

func (r *feedbackRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.FeedbackFilters) ([]*models.Feedback, int64, error) {
	db := r.getDB(tx)

	query := db.WithContext(ctx).Model(&models.Feedback{})
	query = r.helpers.ApplyFeedbackFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var entries []*models.Feedback
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback: %w", err)
	}

	return entries, total, nil
}

func (r *feedbackRepository) AverageRating(ctx context.Context, tx *gorm.DB) (float64, error) {
	db := r.getDB(tx)

	var result struct {
		AvgRating float64
	}

	if err := db.WithContext(ctx).
		Model(&models.Feedback{}).
		Select("COALESCE(AVG(rating), 0) as avg_rating").
		Scan(&result).Error; err != nil {
		return 0, fmt.Errorf("failed to get average rating: %w", err)
	}

	return result.AvgRating, nil
}
