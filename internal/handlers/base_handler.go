package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smart-evolve/grading-service/internal/services"
	"github.com/smart-evolve/grading-service/internal/utils"
)

// ErrorResponse is the uniform error body for every endpoint.
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse wraps simple acknowledgements.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the pieces every handler needs.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs the start of handler work with request correlation.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string) {
	utils.FromContext(c, h.logger).Info(msg,
		"method", c.Request.Method,
		"path", c.Request.URL.Path)
}

// LogError logs a handler-level failure with request correlation.
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	utils.FromContext(c, h.logger).Error(msg,
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path)
}

// handleServiceError maps service error kinds to HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.ErrKindValidation:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case services.ErrKindNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case services.ErrKindConflict:
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	case services.ErrKindUnavailable:
		h.LogError(c, err, "Upstream dependency failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Processing failed",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
