package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DashboardRepository interface for dashboard analytics operations
type DashboardRepository interface {
	// Dashboard stats
	GetTotalStudents(ctx context.Context, tx *gorm.DB) (int64, error)
	GetTotalEvaluations(ctx context.Context, tx *gorm.DB) (int64, error)
	GetEvaluatedStudents(ctx context.Context, tx *gorm.DB) (int64, error)

	// Metrics
	GetCompletionRate(ctx context.Context, tx *gorm.DB) (float64, error)
	GetAveragePercentage(ctx context.Context, tx *gorm.DB) (float64, error)

	// Performance series
	GetSubjectPerformance(ctx context.Context, tx *gorm.DB) ([]SubjectPerformanceData, error)
	GetModeDistribution(ctx context.Context, tx *gorm.DB) ([]ModeDistributionData, error)
	GetScoreTrend(ctx context.Context, tx *gorm.DB, days int) ([]ScoreTrendData, error)

	// Recent activity
	GetRecentEvaluations(ctx context.Context, tx *gorm.DB, limit int) ([]RecentEvaluationData, error)
}

// Data structures for dashboard responses

type SubjectPerformanceData struct {
	Subject           string  `json:"subject"`
	Evaluations       int64   `json:"evaluations"`
	AveragePercentage float64 `json:"average_percentage"`
	BestPercentage    float64 `json:"best_percentage"`
	WorstPercentage   float64 `json:"worst_percentage"`
}

type ModeDistributionData struct {
	Mode       string  `json:"mode"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ScoreTrendData struct {
	Period            string    `json:"period"`
	Evaluations       int64     `json:"evaluations"`
	AveragePercentage float64   `json:"average_percentage"`
	Date              time.Time `json:"date"`
}

type RecentEvaluationData struct {
	ID            uint      `json:"id"`
	USN           string    `json:"usn"`
	StudentName   string    `json:"student_name"`
	Subject       string    `json:"subject"`
	Mode          string    `json:"mode"`
	AdjustedScore float64   `json:"adjusted_score"`
	MaxScore      float64   `json:"max_score"`
	Percentage    float64   `json:"percentage"`
	CreatedAt     time.Time `json:"created_at"`
}
