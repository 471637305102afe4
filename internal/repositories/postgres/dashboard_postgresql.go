package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/repositories"
	"gorm.io/gorm"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== DASHBOARD STATS =====

func (r *dashboardRepository) GetTotalStudents(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.Student{}).
		Where("deleted_at IS NULL").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to get total students: %w", err)
	}

	return count, nil
}

func (r *dashboardRepository) GetTotalEvaluations(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Where("deleted_at IS NULL").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to get total evaluations: %w", err)
	}

	return count, nil
}

// GetEvaluatedStudents counts distinct USNs with at least one completed
// evaluation; the pending number on the dashboard is roster minus this.
func (r *dashboardRepository) GetEvaluatedStudents(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Where("status = ?", models.EvaluationCompleted).
		Distinct("usn").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to get evaluated students: %w", err)
	}

	return count, nil
}

// ===== METRICS =====

func (r *dashboardRepository) GetCompletionRate(ctx context.Context, tx *gorm.DB) (float64, error) {
	total, err := r.GetTotalStudents(ctx, tx)
	if err != nil {
		return 0, err
	}

	if total == 0 {
		return 0, nil
	}

	evaluated, err := r.GetEvaluatedStudents(ctx, tx)
	if err != nil {
		return 0, err
	}

	return float64(evaluated) / float64(total) * 100, nil
}

func (r *dashboardRepository) GetAveragePercentage(ctx context.Context, tx *gorm.DB) (float64, error) {
	db := r.getDB(tx)

	var result struct {
		AvgPercentage float64
	}

	if err := db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Where("status = ?", models.EvaluationCompleted).
		Select("COALESCE(AVG(percentage), 0) as avg_percentage").
		Scan(&result).Error; err != nil {
		return 0, fmt.Errorf("failed to get average percentage: %w", err)
	}

	return result.AvgPercentage, nil
}

// ===== PERFORMANCE SERIES =====

func (r *dashboardRepository) GetSubjectPerformance(ctx context.Context, tx *gorm.DB) ([]repositories.SubjectPerformanceData, error) {
	db := r.getDB(tx)

	var results []struct {
		Subject           string
		Evaluations       int64
		AveragePercentage float64
		BestPercentage    float64
		WorstPercentage   float64
	}

	if err := db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Select("subject, COUNT(*) as evaluations, "+
			"AVG(percentage) as average_percentage, "+
			"MAX(percentage) as best_percentage, "+
			"MIN(percentage) as worst_percentage").
		Where("status = ?", models.EvaluationCompleted).
		Group("subject").
		Order("evaluations DESC").
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to get subject performance: %w", err)
	}

	var performance []repositories.SubjectPerformanceData
	for _, res := range results {
		performance = append(performance, repositories.SubjectPerformanceData{
			Subject:           res.Subject,
			Evaluations:       res.Evaluations,
			AveragePercentage: res.AveragePercentage,
			BestPercentage:    res.BestPercentage,
			WorstPercentage:   res.WorstPercentage,
		})
	}

	return performance, nil
}

func (r *dashboardRepository) GetModeDistribution(ctx context.Context, tx *gorm.DB) ([]repositories.ModeDistributionData, error) {
	db := r.getDB(tx)

	var results []struct {
		Mode  string
		Count int64
	}

	if err := db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Select("mode, COUNT(*) as count").
		Where("deleted_at IS NULL").
		Group("mode").
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to get mode distribution: %w", err)
	}

	var total int64
	for _, res := range results {
		total += res.Count
	}

	var distribution []repositories.ModeDistributionData
	for _, res := range results {
		percentage := float64(0)
		if total > 0 {
			percentage = float64(res.Count) / float64(total) * 100
		}

		distribution = append(distribution, repositories.ModeDistributionData{
			Mode:       res.Mode,
			Count:      res.Count,
			Percentage: percentage,
		})
	}

	return distribution, nil
}

func (r *dashboardRepository) GetScoreTrend(ctx context.Context, tx *gorm.DB, days int) ([]repositories.ScoreTrendData, error) {
	db := r.getDB(tx)

	var results []repositories.ScoreTrendData

	for i := days - 1; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		endOfDay := startOfDay.Add(24 * time.Hour)

		var evaluations int64
		db.WithContext(ctx).
			Model(&models.Evaluation{}).
			Where("created_at >= ? AND created_at < ?", startOfDay, endOfDay).
			Count(&evaluations)

		var scoreResult struct {
			AvgPercentage float64
		}
		db.WithContext(ctx).
			Model(&models.Evaluation{}).
			Where("created_at >= ? AND created_at < ? AND status = ?", startOfDay, endOfDay, models.EvaluationCompleted).
			Select("COALESCE(AVG(percentage), 0) as avg_percentage").
			Scan(&scoreResult)

		results = append(results, repositories.ScoreTrendData{
			Period:            date.Format("Jan 2"),
			Evaluations:       evaluations,
			AveragePercentage: scoreResult.AvgPercentage,
			Date:              startOfDay,
		})
	}

	return results, nil
}

// ===== RECENT EVALUATIONS =====

func (r *dashboardRepository) GetRecentEvaluations(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.RecentEvaluationData, error) {
	db := r.getDB(tx)

	var rows []struct {
		ID            uint
		USN           string
		StudentName   string
		Subject       string
		Mode          string
		AdjustedScore float64
		MaxScore      float64
		Percentage    float64
		CreatedAt     time.Time
	}

	if err := db.WithContext(ctx).
		Table("evaluations").
		Select("evaluations.id, evaluations.usn, "+
			"COALESCE(students.name, '') as student_name, "+
			"evaluations.subject, evaluations.mode, evaluations.adjusted_score, "+
			"evaluations.max_score, evaluations.percentage, evaluations.created_at").
		Joins("LEFT JOIN students ON evaluations.usn = students.usn").
		Where("evaluations.status = ?", models.EvaluationCompleted).
		Order("evaluations.created_at DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent evaluations: %w", err)
	}

	var recent []repositories.RecentEvaluationData
	for _, row := range rows {
		recent = append(recent, repositories.RecentEvaluationData{
			ID:            row.ID,
			USN:           row.USN,
			StudentName:   row.StudentName,
			Subject:       row.Subject,
			Mode:          row.Mode,
			AdjustedScore: row.AdjustedScore,
			MaxScore:      row.MaxScore,
			Percentage:    row.Percentage,
			CreatedAt:     row.CreatedAt,
		})
	}

	return recent, nil
}
