package repositories

import (
	"time"

	"github.com/smart-evolve/grading-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type EvaluationFilters struct {
	Status    *models.EvaluationStatus `json:"status"`
	Mode      *models.EvaluationMode   `json:"mode"`
	USN       *string                  `json:"usn"`
	Subject   *string                  `json:"subject"`
	DateFrom  *time.Time               `json:"date_from"`
	DateTo    *time.Time               `json:"date_to"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
	SortBy    string                   `json:"sort_by"`    // "created_at", "usn", "subject", "adjusted_score"
	SortOrder string                   `json:"sort_order"` // "asc", "desc"
}

type FeedbackFilters struct {
	Subject  *string    `json:"subject"`
	Role     *string    `json:"role"`
	Rating   *int       `json:"rating"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type StudentFilters struct {
	Name   *string `json:"name"` // substring match
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type EvaluationStats struct {
	TotalEvaluations     int64   `json:"total_evaluations"`
	CompletedEvaluations int64   `json:"completed_evaluations"`
	FailedEvaluations    int64   `json:"failed_evaluations"`
	AveragePercentage    float64 `json:"average_percentage"`
}

type SubjectStats struct {
	Subject           string  `json:"subject"`
	Evaluations       int64   `json:"evaluations"`
	AveragePercentage float64 `json:"average_percentage"`
}
