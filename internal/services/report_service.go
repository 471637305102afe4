package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/repositories"
)

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		logger: logger,
	}
}

// Generate renders the text report for the student's latest completed
// evaluation. The text body is assembled server-side from the stored
// analytics; the model's Markdown summary rides along untouched.
func (s *reportService) Generate(ctx context.Context, usn string) (*ReportResponse, error) {
	evaluation, err := s.repo.Evaluation().GetLatestByUSN(ctx, nil, usn)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("evaluation")
		}
		return nil, NewInternalError("failed to load evaluation", err)
	}

	if evaluation.Status != models.EvaluationCompleted {
		return nil, NewConflictError("latest evaluation did not complete")
	}

	studentName := ""
	if student, err := s.repo.Student().GetByUSN(ctx, nil, usn); err == nil {
		studentName = student.Name
	} else if !repositories.IsNotFoundError(err) {
		return nil, NewInternalError("failed to load student", err)
	}

	var analytics models.Analytics
	if len(evaluation.Analytics) > 0 {
		if err := json.Unmarshal(evaluation.Analytics, &analytics); err != nil {
			s.logger.Warn("stored analytics are not decodable, report will omit the breakdown",
				"evaluation_id", evaluation.ID,
				"error", err)
		}
	}

	return &ReportResponse{
		USN:         evaluation.USN,
		StudentName: studentName,
		Subject:     evaluation.Subject,
		Mode:        string(evaluation.Mode),
		Percentage:  evaluation.Percentage,
		ReportText:  buildReportText(evaluation, studentName, analytics),
		Markdown:    evaluation.Report,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// buildReportText renders the band-based plain-text report.
func buildReportText(evaluation *models.Evaluation, studentName string, analytics models.Analytics) string {
	var b strings.Builder

	b.WriteString("EVALUATION REPORT\n")
	b.WriteString("=================\n\n")
	fmt.Fprintf(&b, "USN: %s\n", evaluation.USN)
	if studentName != "" {
		fmt.Fprintf(&b, "Name: %s\n", studentName)
	}
	fmt.Fprintf(&b, "Subject: %s\n", evaluation.Subject)
	fmt.Fprintf(&b, "Evaluation Mode: %s\n", evaluation.Mode)
	fmt.Fprintf(&b, "Score: %.1f / %.1f (%.1f%%)\n\n", evaluation.AdjustedScore, evaluation.MaxScore, evaluation.Percentage)

	band := bandFor(evaluation.Percentage)
	fmt.Fprintf(&b, "Overall Performance: %s\n\n", band.label)

	if len(analytics.QuestionWise) > 0 {
		b.WriteString("Question-wise Performance\n")
		b.WriteString("-------------------------\n")
		for _, q := range analytics.QuestionWise {
			fmt.Fprintf(&b, "  %s: %.1f / %.1f (%.1f%%)\n", q.Question, q.Awarded, q.Max, q.Percentage)
		}
		b.WriteString("\n")
	}

	if len(analytics.SectionWise) > 0 {
		b.WriteString("Section-wise Performance\n")
		b.WriteString("------------------------\n")
		for _, sec := range analytics.SectionWise {
			fmt.Fprintf(&b, "  %s: %.1f / %.1f (%.1f%%)\n", sec.Section, sec.Awarded, sec.Max, sec.Percentage)
		}
		b.WriteString("\n")
	}

	if analytics.DiagramPerformance.RequiredEstimate > 0 {
		fmt.Fprintf(&b, "Diagrams: %d drawn of an estimated %d required\n\n",
			analytics.DiagramPerformance.FoundEstimate,
			analytics.DiagramPerformance.RequiredEstimate)
	}

	b.WriteString("Recommendations\n")
	b.WriteString("---------------\n")
	for _, rec := range band.recommendations {
		fmt.Fprintf(&b, "  - %s\n", rec)
	}

	return b.String()
}

type performanceBand struct {
	label           string
	recommendations []string
}

// bandFor maps a percentage to its performance band.
func bandFor(percentage float64) performanceBand {
	switch {
	case percentage >= 90:
		return performanceBand{
			label: "Outstanding",
			recommendations: []string{
				"Maintain the current preparation routine.",
				"Attempt previous years' papers under timed conditions to stay sharp.",
			},
		}
	case percentage >= 75:
		return performanceBand{
			label: "Very Good",
			recommendations: []string{
				"Review the few questions where marks were lost.",
				"Add more detail and diagrams where the answer key expects them.",
			},
		}
	case percentage >= 60:
		return performanceBand{
			label: "Good",
			recommendations: []string{
				"Revisit the weaker sections identified in the breakdown.",
				"Practice structuring answers around the key concepts before writing.",
			},
		}
	case percentage >= 50:
		return performanceBand{
			label: "Average",
			recommendations: []string{
				"Work through the answer key for every question attempted.",
				"Focus revision on the lowest-scoring sections first.",
				"Practice writing complete answers with all required keywords.",
			},
		}
	default:
		return performanceBand{
			label: "Needs Improvement",
			recommendations: []string{
				"Schedule a review session with the subject teacher.",
				"Rebuild fundamentals for the lowest-scoring sections before attempting full papers.",
				"Re-attempt this paper after revision and compare the results.",
			},
		}
	}
}
