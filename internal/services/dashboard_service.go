package services

import (
	"context"
	"log/slog"

	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/repositories"
)

const (
	defaultRecentLimit = 5
	scoreTrendDays     = 7
)

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		logger: logger,
	}
}

func (s *dashboardService) GetMetrics(ctx context.Context) (*DashboardMetrics, error) {
	dashboard := s.repo.Dashboard()

	totalStudents, err := dashboard.GetTotalStudents(ctx, nil)
	if err != nil {
		return nil, NewInternalError("failed to get total students", err)
	}

	totalEvaluations, err := dashboard.GetTotalEvaluations(ctx, nil)
	if err != nil {
		return nil, NewInternalError("failed to get total evaluations", err)
	}

	evaluated, err := dashboard.GetEvaluatedStudents(ctx, nil)
	if err != nil {
		return nil, NewInternalError("failed to get evaluated students", err)
	}

	completionRate, err := dashboard.GetCompletionRate(ctx, nil)
	if err != nil {
		return nil, NewInternalError("failed to get completion rate", err)
	}

	averagePercentage, err := dashboard.GetAveragePercentage(ctx, nil)
	if err != nil {
		return nil, NewInternalError("failed to get average percentage", err)
	}

	failed, err := s.repo.Evaluation().CountByStatus(ctx, nil, models.EvaluationFailed)
	if err != nil {
		return nil, NewInternalError("failed to get failed evaluations", err)
	}

	pending := totalStudents - evaluated
	if pending < 0 {
		pending = 0
	}

	return &DashboardMetrics{
		TotalStudents:     totalStudents,
		TotalEvaluations:  totalEvaluations,
		EvaluatedStudents: evaluated,
		PendingStudents:   pending,
		CompletionRate:    round1(completionRate),
		AveragePercentage: round1(averagePercentage),
		FailedEvaluations: failed,
	}, nil
}

func (s *dashboardService) GetRecent(ctx context.Context, limit int) ([]repositories.RecentEvaluationData, error) {
	if limit <= 0 || limit > 50 {
		limit = defaultRecentLimit
	}

	recent, err := s.repo.Dashboard().GetRecentEvaluations(ctx, nil, limit)
	if err != nil {
		return nil, NewInternalError("failed to get recent evaluations", err)
	}

	return recent, nil
}

func (s *dashboardService) GetPerformance(ctx context.Context) (*DashboardPerformance, error) {
	dashboard := s.repo.Dashboard()

	subjects, err := dashboard.GetSubjectPerformance(ctx, nil)
	if err != nil {
		return nil, NewInternalError("failed to get subject performance", err)
	}

	modes, err := dashboard.GetModeDistribution(ctx, nil)
	if err != nil {
		return nil, NewInternalError("failed to get mode distribution", err)
	}

	trend, err := dashboard.GetScoreTrend(ctx, nil, scoreTrendDays)
	if err != nil {
		return nil, NewInternalError("failed to get score trend", err)
	}

	return &DashboardPerformance{
		Subjects:   subjects,
		Modes:      modes,
		ScoreTrend: trend,
	}, nil
}
