package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/smart-evolve/grading-service/internal/models"
)

func TestExportEvaluations(t *testing.T) {
	repo := newFakeRepo()
	rows := []*models.Evaluation{
		{
			USN: "1AB19CS001", Subject: "Physics", Mode: models.ModeModerate,
			Status:        models.EvaluationCompleted,
			OriginalScore: 40, AdjustedScore: 40, MaxScore: 50, Percentage: 80,
			DiagramCount: 2, EvaluatedBy: "prof.rao",
		},
		{
			USN: "1AB19CS002", Subject: "Physics", Mode: models.ModeLenient,
			Status:        models.EvaluationCompleted,
			OriginalScore: 15, AdjustedScore: 20, MaxScore: 50, Percentage: 40,
		},
		{
			// Failed runs must not appear in the workbook
			USN: "1AB19CS003", Subject: "Physics", Mode: models.ModeModerate,
			Status: models.EvaluationFailed,
		},
	}
	for _, row := range rows {
		if err := repo.evaluations.Create(context.Background(), nil, row); err != nil {
			t.Fatal(err)
		}
	}

	data, err := NewExportService(repo, testLogger()).ExportEvaluations(context.Background())
	if err != nil {
		t.Fatalf("ExportEvaluations() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	cells, err := f.GetRows("Evaluations")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(cells) != 3 {
		t.Fatalf("workbook has %d rows, want header + 2 completed", len(cells))
	}

	if cells[0][0] != "USN" || cells[0][1] != "Subject" || cells[0][6] != "Percentage" {
		t.Errorf("header row = %v", cells[0])
	}
	if cells[1][0] != "1AB19CS001" || cells[2][0] != "1AB19CS002" {
		t.Errorf("USN column = %q, %q", cells[1][0], cells[2][0])
	}
	if cells[1][2] != "Moderate" || cells[2][2] != "Lenient" {
		t.Errorf("mode column = %q, %q", cells[1][2], cells[2][2])
	}
	if cells[1][8] != "prof.rao" {
		t.Errorf("evaluated by = %q", cells[1][8])
	}
}

func TestExportEvaluationsEmpty(t *testing.T) {
	repo := newFakeRepo()

	data, err := NewExportService(repo, testLogger()).ExportEvaluations(context.Background())
	if err != nil {
		t.Fatalf("ExportEvaluations() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	cells, err := f.GetRows("Evaluations")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(cells) != 1 {
		t.Errorf("workbook has %d rows, want header only", len(cells))
	}
}
