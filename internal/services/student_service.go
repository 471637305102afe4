package services

import (
	"context"
	"log/slog"

	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/repositories"
	"github.com/smart-evolve/grading-service/internal/validator"
)

type studentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewStudentService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) StudentService {
	return &studentService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *studentService) Create(ctx context.Context, req *CreateStudentRequest) (*StudentResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError("invalid student", err)
	}

	exists, err := s.repo.Student().ExistsByUSN(ctx, nil, req.USN)
	if err != nil {
		return nil, NewInternalError("failed to check student roster", err)
	}
	if exists {
		return nil, NewConflictError("student already registered")
	}

	student := &models.Student{
		USN:  req.USN,
		Name: req.Name,
	}
	if err := s.repo.Student().Create(ctx, nil, student); err != nil {
		return nil, NewInternalError("failed to register student", err)
	}

	s.logger.Info("student registered", "usn", student.USN)
	return &StudentResponse{Student: student}, nil
}

func (s *studentService) GetByUSN(ctx context.Context, usn string) (*StudentResponse, error) {
	student, err := s.repo.Student().GetByUSN(ctx, nil, usn)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("student")
		}
		return nil, NewInternalError("failed to load student", err)
	}

	count, err := s.countEvaluations(ctx, usn)
	if err != nil {
		return nil, err
	}

	return &StudentResponse{Student: student, Evaluations: count}, nil
}

func (s *studentService) List(ctx context.Context, filters repositories.StudentFilters) (*StudentListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 200 {
		filters.Limit = 100
	}

	students, total, err := s.repo.Student().List(ctx, nil, filters)
	if err != nil {
		return nil, NewInternalError("failed to list students", err)
	}

	responses := make([]*StudentResponse, 0, len(students))
	for _, student := range students {
		count, err := s.countEvaluations(ctx, student.USN)
		if err != nil {
			return nil, err
		}
		responses = append(responses, &StudentResponse{Student: student, Evaluations: count})
	}

	return &StudentListResponse{
		Students: responses,
		Total:    total,
	}, nil
}

func (s *studentService) countEvaluations(ctx context.Context, usn string) (int64, error) {
	_, total, err := s.repo.Evaluation().List(ctx, nil, repositories.EvaluationFilters{
		USN:   &usn,
		Limit: 1,
	})
	if err != nil {
		return 0, NewInternalError("failed to count evaluations", err)
	}
	return total, nil
}
