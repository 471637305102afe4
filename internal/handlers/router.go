package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smart-evolve/grading-service/internal/services"
	"github.com/smart-evolve/grading-service/internal/utils"
)

// HandlerManager wires services into HTTP handlers and owns route setup.
type HandlerManager struct {
	serviceManager services.ServiceManager
	logger         utils.Logger

	evaluationHandler *EvaluationHandler
	dashboardHandler  *DashboardHandler
	feedbackHandler   *FeedbackHandler
	studentHandler    *StudentHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		serviceManager: serviceManager,
		logger:         logger,

		evaluationHandler: NewEvaluationHandler(serviceManager.Evaluation(), serviceManager.Report(), logger),
		dashboardHandler:  NewDashboardHandler(serviceManager.Dashboard(), serviceManager.Export(), logger),
		feedbackHandler:   NewFeedbackHandler(serviceManager.Feedback(), logger),
		studentHandler:    NewStudentHandler(serviceManager.Student(), logger),
	}
}

// SetupRoutes registers all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	{
		evaluations := v1.Group("/evaluations")
		{
			evaluations.POST("", hm.evaluationHandler.Evaluate)
			evaluations.GET("", hm.evaluationHandler.List)
			evaluations.GET("/:usn", hm.evaluationHandler.GetByUSN)
			evaluations.GET("/:usn/report", hm.evaluationHandler.GetReport)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/metrics", hm.dashboardHandler.GetMetrics)
			dashboard.GET("/recent", hm.dashboardHandler.GetRecent)
			dashboard.GET("/performance", hm.dashboardHandler.GetPerformance)
			dashboard.GET("/export", hm.dashboardHandler.Export)
		}

		feedback := v1.Group("/feedback")
		{
			feedback.POST("", hm.feedbackHandler.Create)
			feedback.GET("", hm.feedbackHandler.List)
		}

		students := v1.Group("/students")
		{
			students.POST("", hm.studentHandler.Create)
			students.GET("", hm.studentHandler.List)
			students.GET("/:usn", hm.studentHandler.GetByUSN)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK

	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
		hm.logger.Error("health check failed", "error", err)
	}

	c.JSON(code, gin.H{
		"status":    status,
		"service":   "grading-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
