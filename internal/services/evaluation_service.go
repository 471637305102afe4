package services

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/smart-evolve/grading-service/internal/ai"
	"github.com/smart-evolve/grading-service/internal/config"
	"github.com/smart-evolve/grading-service/internal/events"
	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/pdf"
	"github.com/smart-evolve/grading-service/internal/repositories"
	"github.com/smart-evolve/grading-service/internal/validator"
)

// Pipeline dependencies are interfaces so tests can run the full service
// without MuPDF or a live model behind them.

type documentRenderer interface {
	RenderPages(path string, dpi int) ([]pdf.Page, error)
	RenderJPEGPages(path string, dpi int) ([]pdf.EncodedPage, error)
}

type textExtractor interface {
	ExtractText(ctx context.Context, pages []pdf.EncodedPage) string
}

type sheetGrader interface {
	Grade(ctx context.Context, input ai.GradingInput) (*ai.GradingOutcome, error)
}

type diagramCounter interface {
	Count(pages []image.Image) int
}

type evaluationService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator

	renderer  documentRenderer
	ocr       textExtractor
	grader    sheetGrader
	detector  diagramCounter
	publisher events.EventPublisher

	cfg config.PipelineConfig
}

func NewEvaluationService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	renderer documentRenderer,
	ocr textExtractor,
	grader sheetGrader,
	detector diagramCounter,
	publisher events.EventPublisher,
	cfg config.PipelineConfig,
) EvaluationService {
	return &evaluationService{
		repo:      repo,
		logger:    logger,
		validator: v,
		renderer:  renderer,
		ocr:       ocr,
		grader:    grader,
		detector:  detector,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Evaluate runs the full grading pipeline. The evaluation row is created in
// "processing" state before any heavy work so a crash mid-pipeline still
// leaves a visible record, and flipped to completed/failed at the end.
func (s *evaluationService) Evaluate(ctx context.Context, req *EvaluateRequest, docs EvaluationDocuments) (*EvaluationResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, NewValidationError("invalid evaluation request", err)
	}
	if err := validateDocuments(docs); err != nil {
		return nil, err
	}

	mode := models.EvaluationMode(req.Mode)
	if !models.ValidMode(mode) {
		mode = models.ModeModerate
	}

	if err := s.ensureStudent(ctx, req.USN); err != nil {
		return nil, err
	}

	evaluation := &models.Evaluation{
		USN:          req.USN,
		Subject:      req.Subject,
		Mode:         mode,
		Status:       models.EvaluationProcessing,
		ScoringRules: req.ScoringRules,
		EvaluatedBy:  req.EvaluatedBy,
	}
	if err := s.repo.Evaluation().Create(ctx, nil, evaluation); err != nil {
		return nil, NewInternalError("failed to record evaluation", err)
	}

	if err := s.runPipeline(ctx, evaluation, docs); err != nil {
		s.markFailed(ctx, evaluation, err)
		return nil, err
	}

	evaluation.Status = models.EvaluationCompleted
	if err := s.repo.Evaluation().Update(ctx, nil, evaluation); err != nil {
		return nil, NewInternalError("failed to store evaluation result", err)
	}

	s.publish(ctx, events.NewEvent(events.TypeEvaluationCompleted, events.EvaluationCompletedData{
		EvaluationID:  evaluation.ID,
		USN:           evaluation.USN,
		Subject:       evaluation.Subject,
		Mode:          string(evaluation.Mode),
		AdjustedScore: evaluation.AdjustedScore,
		MaxScore:      evaluation.MaxScore,
		DiagramCount:  evaluation.DiagramCount,
	}))

	s.logger.Info("evaluation completed",
		"evaluation_id", evaluation.ID,
		"usn", evaluation.USN,
		"subject", evaluation.Subject,
		"mode", evaluation.Mode,
		"adjusted_score", evaluation.AdjustedScore,
		"max_score", evaluation.MaxScore)

	return newEvaluationResponse(evaluation), nil
}

// runPipeline fills the evaluation's output fields in place.
func (s *evaluationService) runPipeline(ctx context.Context, evaluation *models.Evaluation, docs EvaluationDocuments) error {
	paths, cleanup, err := s.saveUploads(docs)
	if err != nil {
		return NewInternalError("failed to store uploaded documents", err)
	}
	defer cleanup()

	// OCR the three documents concurrently; each document's pages are still
	// processed in order so page placeholders line up.
	texts := make([]string, 3)
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			pages, err := s.renderer.RenderJPEGPages(path, s.cfg.OCRDPI)
			if err != nil {
				return fmt.Errorf("failed to render document: %w", err)
			}
			texts[i] = s.ocr.ExtractText(gctx, pages)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return NewUnavailableError("document processing failed", err)
	}
	evaluation.QuestionText = texts[0]
	evaluation.KeyText = texts[1]
	evaluation.StudentText = texts[2]

	// Diagram counting renders the answer sheet a second time at a higher
	// DPI. It is advisory input to the grading prompt, so failure degrades
	// to zero instead of aborting the run.
	evaluation.DiagramCount = s.countDiagrams(paths[2])

	outcome, err := s.grader.Grade(ctx, ai.GradingInput{
		QuestionText: evaluation.QuestionText,
		KeyText:      evaluation.KeyText,
		StudentText:  evaluation.StudentText,
		ScoringRules: evaluation.ScoringRules,
		Mode:         evaluation.Mode,
		DiagramCount: evaluation.DiagramCount,
	})
	if err != nil {
		return NewUnavailableError("grading model call failed", err)
	}

	evaluation.Report = outcome.Report
	if !outcome.Analytics.IsZero() {
		analyticsJSON, err := json.Marshal(outcome.Analytics)
		if err != nil {
			return NewInternalError("failed to encode analytics", err)
		}
		evaluation.Analytics = analyticsJSON
	}

	evaluation.OriginalScore = outcome.Analytics.TotalScore.Awarded
	evaluation.MaxScore = outcome.Analytics.TotalScore.Max
	evaluation.AdjustedScore = ApplyEvaluationMode(evaluation.OriginalScore, evaluation.MaxScore, evaluation.Mode)
	if evaluation.MaxScore > 0 {
		evaluation.Percentage = round1(evaluation.AdjustedScore / evaluation.MaxScore * 100)
	}

	return nil
}

func (s *evaluationService) countDiagrams(answerSheetPath string) int {
	pages, err := s.renderer.RenderPages(answerSheetPath, s.cfg.DiagramDPI)
	if err != nil {
		s.logger.Warn("diagram detection skipped, could not render answer sheet",
			"error", err)
		return 0
	}

	images := make([]image.Image, 0, len(pages))
	for _, page := range pages {
		images = append(images, page.Image)
	}
	return s.detector.Count(images)
}

// saveUploads writes the three PDFs under the upload dir. The files only
// need to exist while MuPDF reads them, so cleanup removes them again.
func (s *evaluationService) saveUploads(docs EvaluationDocuments) ([3]string, func(), error) {
	var paths [3]string

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return paths, func() {}, fmt.Errorf("failed to create upload dir: %w", err)
	}

	uploads := [3]DocumentUpload{docs.QuestionPaper, docs.AnswerKey, docs.AnswerSheet}
	written := make([]string, 0, 3)
	cleanup := func() {
		for _, p := range written {
			if err := os.Remove(p); err != nil {
				s.logger.Warn("failed to remove uploaded document", "path", p, "error", err)
			}
		}
	}

	for i, doc := range uploads {
		path := filepath.Join(s.cfg.UploadDir, uuid.New().String()+".pdf")
		if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
			cleanup()
			return paths, func() {}, fmt.Errorf("failed to write %s: %w", doc.Filename, err)
		}
		written = append(written, path)
		paths[i] = path
	}

	return paths, cleanup, nil
}

// ensureStudent auto-registers unknown USNs so an upload never bounces on
// roster state; the name can be filled in later through the roster API.
func (s *evaluationService) ensureStudent(ctx context.Context, usn string) error {
	exists, err := s.repo.Student().ExistsByUSN(ctx, nil, usn)
	if err != nil {
		return NewInternalError("failed to check student roster", err)
	}
	if exists {
		return nil
	}

	if err := s.repo.Student().Create(ctx, nil, &models.Student{USN: usn}); err != nil {
		return NewInternalError("failed to register student", err)
	}
	s.logger.Info("auto-registered student from evaluation upload", "usn", usn)
	return nil
}

func (s *evaluationService) markFailed(ctx context.Context, evaluation *models.Evaluation, cause error) {
	msg := cause.Error()
	evaluation.Status = models.EvaluationFailed
	evaluation.Error = &msg

	if err := s.repo.Evaluation().Update(ctx, nil, evaluation); err != nil {
		s.logger.Error("failed to record evaluation failure",
			"evaluation_id", evaluation.ID,
			"error", err)
	}

	s.publish(ctx, events.NewEvent(events.TypeEvaluationFailed, events.EvaluationFailedData{
		EvaluationID: evaluation.ID,
		USN:          evaluation.USN,
		Subject:      evaluation.Subject,
		Error:        msg,
	}))
}

// publish never fails the request; the evaluation result is already stored.
func (s *evaluationService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			"event_type", event.Type,
			"error", err)
	}
}

// ===== LOOKUPS =====

func (s *evaluationService) GetByID(ctx context.Context, id uint) (*EvaluationResponse, error) {
	evaluation, err := s.repo.Evaluation().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("evaluation")
		}
		return nil, NewInternalError("failed to load evaluation", err)
	}
	return newEvaluationResponse(evaluation), nil
}

func (s *evaluationService) GetLatestByUSN(ctx context.Context, usn string) (*EvaluationResponse, error) {
	evaluation, err := s.repo.Evaluation().GetLatestByUSN(ctx, nil, usn)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("evaluation")
		}
		return nil, NewInternalError("failed to load evaluation", err)
	}
	return newEvaluationResponse(evaluation), nil
}

func (s *evaluationService) GetHistoryByUSN(ctx context.Context, usn string) ([]*EvaluationResponse, error) {
	evaluations, err := s.repo.Evaluation().ListByUSN(ctx, nil, usn)
	if err != nil {
		return nil, NewInternalError("failed to load evaluation history", err)
	}

	responses := make([]*EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		responses = append(responses, newEvaluationResponse(evaluation))
	}
	return responses, nil
}

func (s *evaluationService) List(ctx context.Context, filters repositories.EvaluationFilters) (*EvaluationListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	evaluations, total, err := s.repo.Evaluation().List(ctx, nil, filters)
	if err != nil {
		return nil, NewInternalError("failed to list evaluations", err)
	}

	responses := make([]*EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		responses = append(responses, newEvaluationResponse(evaluation))
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &EvaluationListResponse{
		Evaluations: responses,
		Total:       total,
		Page:        page,
		Size:        filters.Limit,
	}, nil
}

func validateDocuments(docs EvaluationDocuments) error {
	checks := []struct {
		name string
		doc  DocumentUpload
	}{
		{"question paper", docs.QuestionPaper},
		{"answer key", docs.AnswerKey},
		{"answer sheet", docs.AnswerSheet},
	}
	for _, c := range checks {
		if len(c.doc.Data) == 0 {
			return NewValidationError(fmt.Sprintf("%s PDF is required", c.name), nil)
		}
	}
	return nil
}

func newEvaluationResponse(evaluation *models.Evaluation) *EvaluationResponse {
	return &EvaluationResponse{
		Evaluation:   evaluation,
		HasAnalytics: len(evaluation.Analytics) > 0,
	}
}
