package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smart-evolve/grading-service/internal/repositories"
	"github.com/smart-evolve/grading-service/internal/services"
	"github.com/smart-evolve/grading-service/internal/utils"
)

type FeedbackHandler struct {
	BaseHandler
	service services.FeedbackService
}

func NewFeedbackHandler(service services.FeedbackService, logger utils.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Create records a platform rating/comment.
func (h *FeedbackHandler) Create(c *gin.Context) {
	h.LogRequest(c, "Creating feedback")

	var req services.CreateFeedbackRequest
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

// List returns feedback entries with the running average rating.
func (h *FeedbackHandler) List(c *gin.Context) {
	h.LogRequest(c, "Listing feedback")

	filters := repositories.FeedbackFilters{}
	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if role := c.Query("role"); role != "" {
		filters.Role = &role
	}
	if rating, err := strconv.Atoi(c.Query("rating")); err == nil {
		filters.Rating = &rating
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
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
