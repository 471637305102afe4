package services

import (
	"context"
	"log/slog"

	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/repositories"
	"github.com/smart-evolve/grading-service/internal/validator"
)

type feedbackService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewFeedbackService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) FeedbackService {
	return &feedbackService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *feedbackService) Create(ctx context.Context, req *CreateFeedbackRequest) (*FeedbackResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError("invalid feedback", err)
	}

	feedback := &models.Feedback{
		USN:     req.USN,
		Role:    req.Role,
		Rating:  req.Rating,
		Comment: req.Comment,
		Subject: req.Subject,
	}
	if feedback.Subject == "" {
		feedback.Subject = "General"
	}

	if err := s.repo.Feedback().Create(ctx, nil, feedback); err != nil {
		return nil, NewInternalError("failed to store feedback", err)
	}

	s.logger.Info("feedback recorded",
		"usn", feedback.USN,
		"rating", feedback.Rating,
		"subject", feedback.Subject)

	return &FeedbackResponse{Feedback: feedback}, nil
}

func (s *feedbackService) List(ctx context.Context, filters repositories.FeedbackFilters) (*FeedbackListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 50
	}

	entries, total, err := s.repo.Feedback().List(ctx, nil, filters)
	if err != nil {
		return nil, NewInternalError("failed to list feedback", err)
	}

	average, err := s.repo.Feedback().AverageRating(ctx, nil)
	if err != nil {
		return nil, NewInternalError("failed to compute average rating", err)
	}

	responses := make([]*FeedbackResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, &FeedbackResponse{Feedback: entry})
	}

	return &FeedbackListResponse{
		Feedback:      responses,
		Total:         total,
		AverageRating: round1(average),
	}, nil
}
