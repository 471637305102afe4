package services

import (
	"context"
	"time"

	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/repositories"
	"github.com/smart-evolve/grading-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validator types for incoming payloads
type EvaluateRequest = validator.EvaluateRequest
type CreateFeedbackRequest = validator.FeedbackCreateRequest
type CreateStudentRequest = validator.StudentCreateRequest

// DocumentUpload is one uploaded PDF, already read off the wire.
type DocumentUpload struct {
	Filename string
	Data     []byte
}

// EvaluationDocuments bundles the three PDFs one grading run needs.
type EvaluationDocuments struct {
	QuestionPaper DocumentUpload
	AnswerKey     DocumentUpload
	AnswerSheet   DocumentUpload
}

type EvaluationResponse struct {
	*models.Evaluation
	HasAnalytics bool `json:"has_analytics"`
}

type EvaluationListResponse struct {
	Evaluations []*EvaluationResponse `json:"evaluations"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

// ReportResponse is the rendered plain-text report for a student's latest
// evaluation, plus the pieces the UI shows alongside it.
type ReportResponse struct {
	USN         string    `json:"usn"`
	StudentName string    `json:"student_name,omitempty"`
	Subject     string    `json:"subject"`
	Mode        string    `json:"mode"`
	Percentage  float64   `json:"percentage"`
	ReportText  string    `json:"report_text"`
	Markdown    string    `json:"markdown"`
	GeneratedAt time.Time `json:"generated_at"`
}

type FeedbackResponse struct {
	*models.Feedback
}

type FeedbackListResponse struct {
	Feedback      []*FeedbackResponse `json:"feedback"`
	Total         int64               `json:"total"`
	AverageRating float64             `json:"average_rating"`
}

type StudentResponse struct {
	*models.Student
	Evaluations int64 `json:"evaluations"`
}

type StudentListResponse struct {
	Students []*StudentResponse `json:"students"`
	Total    int64              `json:"total"`
}

// DashboardMetrics is the headline numbers block of the dashboard.
type DashboardMetrics struct {
	TotalStudents     int64   `json:"total_students"`
	TotalEvaluations  int64   `json:"total_evaluations"`
	EvaluatedStudents int64   `json:"evaluated_students"`
	PendingStudents   int64   `json:"pending_students"`
	CompletionRate    float64 `json:"completion_rate"`
	AveragePercentage float64 `json:"average_percentage"`
	FailedEvaluations int64   `json:"failed_evaluations"`
}

type DashboardPerformance struct {
	Subjects   []repositories.SubjectPerformanceData `json:"subjects"`
	Modes      []repositories.ModeDistributionData   `json:"modes"`
	ScoreTrend []repositories.ScoreTrendData         `json:"score_trend"`
}

// ===== SERVICE INTERFACES =====

type EvaluationService interface {
	// Evaluate runs the full grading pipeline for one answer sheet:
	// rasterize, OCR, diagram count, grading call, mode adjustment, persist.
	Evaluate(ctx context.Context, req *EvaluateRequest, docs EvaluationDocuments) (*EvaluationResponse, error)

	// Lookups
	GetByID(ctx context.Context, id uint) (*EvaluationResponse, error)
	GetLatestByUSN(ctx context.Context, usn string) (*EvaluationResponse, error)
	GetHistoryByUSN(ctx context.Context, usn string) ([]*EvaluationResponse, error)
	List(ctx context.Context, filters repositories.EvaluationFilters) (*EvaluationListResponse, error)
}

type ReportService interface {
	// Generate renders the text report for the student's latest evaluation.
	Generate(ctx context.Context, usn string) (*ReportResponse, error)
}

type DashboardService interface {
	GetMetrics(ctx context.Context) (*DashboardMetrics, error)
	GetRecent(ctx context.Context, limit int) ([]repositories.RecentEvaluationData, error)
	GetPerformance(ctx context.Context) (*DashboardPerformance, error)
}

type ExportService interface {
	// ExportEvaluations renders all completed evaluations as an XLSX workbook.
	ExportEvaluations(ctx context.Context) ([]byte, error)
}

type FeedbackService interface {
	Create(ctx context.Context, req *CreateFeedbackRequest) (*FeedbackResponse, error)
	List(ctx context.Context, filters repositories.FeedbackFilters) (*FeedbackListResponse, error)
}

type StudentService interface {
	Create(ctx context.Context, req *CreateStudentRequest) (*StudentResponse, error)
	GetByUSN(ctx context.Context, usn string) (*StudentResponse, error)
	List(ctx context.Context, filters repositories.StudentFilters) (*StudentListResponse, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Evaluation() EvaluationService
	Report() ReportService
	Dashboard() DashboardService
	Export() ExportService
	Feedback() FeedbackService
	Student() StudentService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
