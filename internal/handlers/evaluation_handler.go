package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/repositories"
	"github.com/smart-evolve/grading-service/internal/services"
	"github.com/smart-evolve/grading-service/internal/utils"
)

// Uploaded scans are JPEG-heavy PDFs; 25 MB covers a long answer booklet.
const maxUploadBytes = 25 << 20

type EvaluationHandler struct {
	BaseHandler
	service services.EvaluationService
	reports services.ReportService
}

func NewEvaluationHandler(service services.EvaluationService, reports services.ReportService, logger utils.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		reports:     reports,
	}
}

// Evaluate accepts the multipart upload and runs the grading pipeline.
// Form fields: usn, subject, mode, rules, evaluated_by.
// Form files: question_paper, answer_key, answer_sheet (PDF each).
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	h.LogRequest(c, "Starting evaluation")

	var req services.EvaluateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid form fields",
			Details: err.Error(),
		})
		return
	}

	docs := services.EvaluationDocuments{}
	files := []struct {
		field string
		dest  *services.DocumentUpload
	}{
		{"question_paper", &docs.QuestionPaper},
		{"answer_key", &docs.AnswerKey},
		{"answer_sheet", &docs.AnswerSheet},
	}
	for _, f := range files {
		upload, ok := h.readUpload(c, f.field)
		if !ok {
			return
		}
		*f.dest = upload
	}

	result, err := h.service.Evaluate(c.Request.Context(), &req, docs)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// List returns evaluations with optional filters (usn, subject, status,
// mode, limit, offset).
func (h *EvaluationHandler) List(c *gin.Context) {
	h.LogRequest(c, "Listing evaluations")

	filters := repositories.EvaluationFilters{
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if usn := c.Query("usn"); usn != "" {
		filters.USN = &usn
	}
	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if status := c.Query("status"); status != "" {
		s := models.EvaluationStatus(status)
		filters.Status = &s
	}
	if mode := c.Query("mode"); mode != "" {
		m := models.EvaluationMode(mode)
		filters.Mode = &m
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil {
		filters.Offset = offset
	}

	result, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetByUSN returns the evaluation history for one student, newest first.
func (h *EvaluationHandler) GetByUSN(c *gin.Context) {
	h.LogRequest(c, "Getting evaluations by USN")

	usn := strings.ToUpper(strings.TrimSpace(c.Param("usn")))
	history, err := h.service.GetHistoryByUSN(c.Request.Context(), usn)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if len(history) == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "no evaluations found for " + usn,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"usn":         usn,
		"evaluations": history,
	})
}

// GetReport returns the rendered report for the student's latest evaluation.
func (h *EvaluationHandler) GetReport(c *gin.Context) {
	h.LogRequest(c, "Getting evaluation report")

	usn := strings.ToUpper(strings.TrimSpace(c.Param("usn")))
	report, err := h.reports.Generate(c.Request.Context(), usn)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// readUpload pulls one PDF out of the multipart form.
func (h *EvaluationHandler) readUpload(c *gin.Context, field string) (services.DocumentUpload, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file: " + field,
			Details: err.Error(),
		})
		return services.DocumentUpload{}, false
	}

	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: field + " exceeds the upload size limit",
		})
		return services.DocumentUpload{}, false
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: field + " must be a PDF",
		})
		return services.DocumentUpload{}, false
	}

	data, ok := h.readAll(c, fileHeader, field)
	if !ok {
		return services.DocumentUpload{}, false
	}

	return services.DocumentUpload{
		Filename: fileHeader.Filename,
		Data:     data,
	}, true
}

func (h *EvaluationHandler) readAll(c *gin.Context, fileHeader *multipart.FileHeader, field string) ([]byte, bool) {
	file, err := fileHeader.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded file")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Could not read " + field,
		})
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.LogError(c, err, "Failed to read uploaded file")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Could not read " + field,
		})
		return nil, false
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: field + " exceeds the upload size limit",
		})
		return nil, false
	}

	return data, true
}
