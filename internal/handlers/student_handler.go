package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smart-evolve/grading-service/internal/repositories"
	"github.com/smart-evolve/grading-service/internal/services"
	"github.com/smart-evolve/grading-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	service services.StudentService
}

func NewStudentHandler(service services.StudentService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Create adds one student to the roster.
func (h *StudentHandler) Create(c *gin.Context) {
	h.LogRequest(c, "Registering student")

	var req services.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	result, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// List returns the roster with per-student evaluation counts.
func (h *StudentHandler) List(c *gin.Context) {
	h.LogRequest(c, "Listing students")

	filters := repositories.StudentFilters{}
	if name := c.Query("name"); name != "" {
		filters.Name = &name
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
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

// GetByUSN returns one roster entry.
func (h *StudentHandler) GetByUSN(c *gin.Context) {
	h.LogRequest(c, "Getting student")

	usn := strings.ToUpper(strings.TrimSpace(c.Param("usn")))
	result, err := h.service.GetByUSN(c.Request.Context(), usn)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
