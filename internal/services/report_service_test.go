package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/smart-evolve/grading-service/internal/models"
)

func seedCompletedEvaluation(t *testing.T, repo *fakeRepo, percentage float64) *models.Evaluation {
	t.Helper()

	analytics := models.Analytics{
		TotalScore: models.ScoreEntry{Awarded: percentage / 2, Max: 50, Percentage: percentage},
		QuestionWise: []models.QuestionScore{
			{Question: "Q1", Awarded: 8, Max: 10, Percentage: 80},
			{Question: "Q2", Awarded: 6, Max: 10, Percentage: 60},
		},
		SectionWise: []models.SectionScore{
			{Section: "Part A", Awarded: 14, Max: 20, Percentage: 70},
		},
		DiagramPerformance: models.DiagramPerformance{RequiredEstimate: 2, FoundEstimate: 1},
	}
	payload, err := json.Marshal(analytics)
	if err != nil {
		t.Fatal(err)
	}

	evaluation := &models.Evaluation{
		USN:           "1AB19CS001",
		Subject:       "Operating Systems",
		Mode:          models.ModeModerate,
		Status:        models.EvaluationCompleted,
		Report:        "## Summary\nSolid work.",
		Analytics:     payload,
		OriginalScore: percentage / 2,
		AdjustedScore: percentage / 2,
		MaxScore:      50,
		Percentage:    percentage,
	}
	if err := repo.evaluations.Create(context.Background(), nil, evaluation); err != nil {
		t.Fatal(err)
	}
	return evaluation
}

func TestGenerateReport(t *testing.T) {
	repo := newFakeRepo()
	seedCompletedEvaluation(t, repo, 64)
	if err := repo.students.Create(context.Background(), nil, &models.Student{USN: "1AB19CS001", Name: "Asha"}); err != nil {
		t.Fatal(err)
	}

	report, err := NewReportService(repo, testLogger()).Generate(context.Background(), "1AB19CS001")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if report.USN != "1AB19CS001" || report.StudentName != "Asha" {
		t.Errorf("identity = %s/%s", report.USN, report.StudentName)
	}
	if report.Subject != "Operating Systems" || report.Mode != "Moderate" {
		t.Errorf("subject/mode = %s/%s", report.Subject, report.Mode)
	}
	if report.Markdown != "## Summary\nSolid work." {
		t.Errorf("markdown = %q", report.Markdown)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}

	for _, want := range []string{
		"EVALUATION REPORT",
		"USN: 1AB19CS001",
		"Name: Asha",
		"Subject: Operating Systems",
		"Score: 32.0 / 50.0 (64.0%)",
		"Overall Performance: Good",
		"Question-wise Performance",
		"Q1: 8.0 / 10.0 (80.0%)",
		"Section-wise Performance",
		"Part A: 14.0 / 20.0 (70.0%)",
		"Diagrams: 1 drawn of an estimated 2 required",
		"Recommendations",
	} {
		if !strings.Contains(report.ReportText, want) {
			t.Errorf("report text missing %q", want)
		}
	}
}

func TestGenerateReportWithoutRosterName(t *testing.T) {
	repo := newFakeRepo()
	seedCompletedEvaluation(t, repo, 64)

	report, err := NewReportService(repo, testLogger()).Generate(context.Background(), "1AB19CS001")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if report.StudentName != "" {
		t.Errorf("student name = %q, want empty", report.StudentName)
	}
	if strings.Contains(report.ReportText, "Name:") {
		t.Error("report text has a Name line without a roster entry")
	}
}

func TestGenerateReportNotFound(t *testing.T) {
	repo := newFakeRepo()

	_, err := NewReportService(repo, testLogger()).Generate(context.Background(), "1AB19CS001")
	if !IsNotFound(err) {
		t.Errorf("Generate() error = %v, want not found", err)
	}
}

func TestGenerateReportIncompleteEvaluation(t *testing.T) {
	repo := newFakeRepo()
	msg := "model unreachable"
	if err := repo.evaluations.Create(context.Background(), nil, &models.Evaluation{
		USN: "1AB19CS001", Subject: "Physics", Status: models.EvaluationFailed, Error: &msg,
	}); err != nil {
		t.Fatal(err)
	}

	_, err := NewReportService(repo, testLogger()).Generate(context.Background(), "1AB19CS001")
	if err == nil {
		t.Fatal("Generate() error = nil, want conflict")
	}
	if KindOf(err) != ErrKindConflict {
		t.Errorf("error kind = %v, want conflict", KindOf(err))
	}
}

func TestGenerateReportCorruptAnalytics(t *testing.T) {
	repo := newFakeRepo()
	if err := repo.evaluations.Create(context.Background(), nil, &models.Evaluation{
		USN:        "1AB19CS001",
		Subject:    "Physics",
		Mode:       models.ModeModerate,
		Status:     models.EvaluationCompleted,
		Analytics:  []byte("{broken"),
		Percentage: 55,
	}); err != nil {
		t.Fatal(err)
	}

	report, err := NewReportService(repo, testLogger()).Generate(context.Background(), "1AB19CS001")
	if err != nil {
		t.Fatalf("Generate() error = %v, corrupt analytics must degrade", err)
	}
	if strings.Contains(report.ReportText, "Question-wise") {
		t.Error("report has a breakdown although analytics were undecodable")
	}
	if !strings.Contains(report.ReportText, "Overall Performance: Average") {
		t.Errorf("report text = %q, missing the band line", report.ReportText)
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{95, "Outstanding"},
		{90, "Outstanding"},
		{80, "Very Good"},
		{75, "Very Good"},
		{65, "Good"},
		{60, "Good"},
		{55, "Average"},
		{50, "Average"},
		{49.9, "Needs Improvement"},
		{0, "Needs Improvement"},
	}
	for _, tt := range tests {
		band := bandFor(tt.percentage)
		if band.label != tt.want {
			t.Errorf("bandFor(%v) = %s, want %s", tt.percentage, band.label, tt.want)
		}
		if len(band.recommendations) == 0 {
			t.Errorf("bandFor(%v) has no recommendations", tt.percentage)
		}
	}
}
