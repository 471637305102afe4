package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/smart-evolve/grading-service/internal/config"
	"github.com/smart-evolve/grading-service/internal/events"
	"github.com/smart-evolve/grading-service/internal/repositories"
	"github.com/smart-evolve/grading-service/internal/validator"
)

// PipelineComponents carries the grading pipeline dependencies into the
// service manager. They are built once in main and shared by every
// evaluation run.
type PipelineComponents struct {
	Renderer  documentRenderer
	OCR       textExtractor
	Grader    sheetGrader
	Detector  diagramCounter
	Publisher events.EventPublisher
	Config    config.PipelineConfig
}

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	EnableDebugLogging bool
	LogLevel           slog.Level
	DefaultTimeout     time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	pipeline  PipelineComponents
	config    ServiceManagerConfig

	// Service instances
	evaluationService EvaluationService
	reportService     ReportService
	dashboardService  DashboardService
	exportService     ExportService
	feedbackService   FeedbackService
	studentService    StudentService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, pipeline PipelineComponents, cfg ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		logger:    logger,
		validator: v,
		pipeline:  pipeline,
		config:    cfg,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, pipeline PipelineComponents) ServiceManager {
	return NewServiceManager(repo, logger, v, pipeline, ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,
		DefaultTimeout:     5 * time.Minute, // grading runs several model calls
	})
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if sm.pipeline.Renderer == nil || sm.pipeline.OCR == nil || sm.pipeline.Grader == nil || sm.pipeline.Detector == nil {
		return fmt.Errorf("pipeline components are incomplete")
	}
	if sm.pipeline.Publisher == nil {
		return fmt.Errorf("event publisher is required")
	}

	sm.evaluationService = NewEvaluationService(
		sm.repo, sm.logger, sm.validator,
		sm.pipeline.Renderer, sm.pipeline.OCR, sm.pipeline.Grader, sm.pipeline.Detector,
		sm.pipeline.Publisher, sm.pipeline.Config,
	)
	sm.logger.Info("Evaluation service initialized")

	sm.reportService = NewReportService(sm.repo, sm.logger)
	sm.logger.Info("Report service initialized")

	sm.dashboardService = NewDashboardService(sm.repo, sm.logger)
	sm.logger.Info("Dashboard service initialized")

	sm.exportService = NewExportService(sm.repo, sm.logger)
	sm.logger.Info("Export service initialized")

	sm.feedbackService = NewFeedbackService(sm.repo, sm.logger, sm.validator)
	sm.logger.Info("Feedback service initialized")

	sm.studentService = NewStudentService(sm.repo, sm.logger, sm.validator)
	sm.logger.Info("Student service initialized")

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Evaluation() EvaluationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.evaluationService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.reportService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.dashboardService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.exportService
}

func (sm *serviceManager) Feedback() FeedbackService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.feedbackService
}

func (sm *serviceManager) Student() StudentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.studentService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.pipeline.Publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
