package postgres

import (
	"context"

	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// CountEvaluationsByStatus counts evaluations in a given pipeline status
func (h *SharedHelpers) CountEvaluationsByStatus(ctx context.Context, status models.EvaluationStatus) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CountEvaluationsByStudent counts evaluations recorded for a student
func (h *SharedHelpers) CountEvaluationsByStudent(ctx context.Context, usn string) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Where("usn = ?", usn).
		Count(&count).Error
	return count, err
}

// ApplyEvaluationFilters applies common filters to evaluation queries
func (h *SharedHelpers) ApplyEvaluationFilters(query *gorm.DB, filters repositories.EvaluationFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Mode != nil {
		query = query.Where("mode = ?", *filters.Mode)
	}
	if filters.USN != nil {
		query = query.Where("usn = ?", *filters.USN)
	}
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyFeedbackFilters applies common filters to feedback queries
func (h *SharedHelpers) ApplyFeedbackFilters(query *gorm.DB, filters repositories.FeedbackFilters) *gorm.DB {
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.Rating != nil {
		query = query.Where("rating = ?", *filters.Rating)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at":     true,
		"updated_at":     true,
		"id":             true,
		"usn":            true,
		"subject":        true,
		"status":         true,
		"mode":           true,
		"adjusted_score": true,
		"percentage":     true,
	}

	// Validate and set sort column
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	// Validate and set sort order
	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
