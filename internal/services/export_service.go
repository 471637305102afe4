package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/repositories"
)

const exportSheetName = "Evaluations"

// Page through evaluations instead of loading everything at once.
const exportBatchSize = 500

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportEvaluations renders all completed evaluations as an XLSX workbook.
func (s *exportService) ExportEvaluations(ctx context.Context) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", "error", err)
		}
	}()

	f.SetSheetName("Sheet1", exportSheetName)

	headers := []interface{}{
		"USN", "Subject", "Mode", "Original Score", "Adjusted Score",
		"Max Score", "Percentage", "Diagrams", "Evaluated By", "Evaluated At",
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &headers); err != nil {
		return nil, NewInternalError("failed to write export header", err)
	}

	status := models.EvaluationCompleted
	row := 2
	offset := 0
	for {
		evaluations, _, err := s.repo.Evaluation().List(ctx, nil, repositories.EvaluationFilters{
			Status:    &status,
			Limit:     exportBatchSize,
			Offset:    offset,
			SortBy:    "created_at",
			SortOrder: "asc",
		})
		if err != nil {
			return nil, NewInternalError("failed to load evaluations for export", err)
		}
		if len(evaluations) == 0 {
			break
		}

		for _, evaluation := range evaluations {
			cell := fmt.Sprintf("A%d", row)
			values := []interface{}{
				evaluation.USN,
				evaluation.Subject,
				string(evaluation.Mode),
				evaluation.OriginalScore,
				evaluation.AdjustedScore,
				evaluation.MaxScore,
				evaluation.Percentage,
				evaluation.DiagramCount,
				evaluation.EvaluatedBy,
				evaluation.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			if err := f.SetSheetRow(exportSheetName, cell, &values); err != nil {
				return nil, NewInternalError("failed to write export row", err)
			}
			row++
		}

		if len(evaluations) < exportBatchSize {
			break
		}
		offset += exportBatchSize
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, NewInternalError("failed to encode workbook", err)
	}

	s.logger.Info("exported evaluations", "rows", row-2)
	return buf.Bytes(), nil
}
