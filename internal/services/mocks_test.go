package services

import (
	"context"
	"image"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/smart-evolve/grading-service/internal/ai"
	"github.com/smart-evolve/grading-service/internal/config"
	"github.com/smart-evolve/grading-service/internal/events"
	"github.com/smart-evolve/grading-service/internal/models"
	"github.com/smart-evolve/grading-service/internal/pdf"
	"github.com/smart-evolve/grading-service/internal/repositories"
	"github.com/smart-evolve/grading-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ===== IN-MEMORY REPOSITORY =====

type fakeEvaluationRepo struct {
	mu     sync.Mutex
	nextID uint
	items  []*models.Evaluation

	createErr error
	updateErr error
	listErr   error
}

func (r *fakeEvaluationRepo) Create(ctx context.Context, tx *gorm.DB, evaluation *models.Evaluation) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	evaluation.ID = r.nextID
	evaluation.CreatedAt = time.Now()
	r.items = append(r.items, evaluation)
	return nil
}

func (r *fakeEvaluationRepo) Update(ctx context.Context, tx *gorm.DB, evaluation *models.Evaluation) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, item := range r.items {
		if item.ID == evaluation.ID {
			r.items[i] = evaluation
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeEvaluationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEvaluationRepo) GetLatestByUSN(ctx context.Context, tx *gorm.DB, usn string) (*models.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Evaluation
	for _, item := range r.items {
		if item.USN == usn && (latest == nil || item.ID > latest.ID) {
			latest = item
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (r *fakeEvaluationRepo) ListByUSN(ctx context.Context, tx *gorm.DB, usn string) ([]*models.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Evaluation
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].USN == usn {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *fakeEvaluationRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.EvaluationFilters) ([]*models.Evaluation, int64, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*models.Evaluation
	for _, item := range r.items {
		if filters.Status != nil && item.Status != *filters.Status {
			continue
		}
		if filters.Mode != nil && item.Mode != *filters.Mode {
			continue
		}
		if filters.USN != nil && item.USN != *filters.USN {
			continue
		}
		if filters.Subject != nil && item.Subject != *filters.Subject {
			continue
		}
		matched = append(matched, item)
	}

	total := int64(len(matched))
	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return nil, total, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}

func (r *fakeEvaluationRepo) GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Evaluation
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		if r.items[i].Status == models.EvaluationCompleted {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *fakeEvaluationRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *fakeEvaluationRepo) CountByStatus(ctx context.Context, tx *gorm.DB, status models.EvaluationStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, item := range r.items {
		if item.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeStudentRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[string]*models.Student

	createErr error
	existsErr error
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{items: make(map[string]*models.Student)}
}

func (r *fakeStudentRepo) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	student.ID = r.nextID
	student.CreatedAt = time.Now()
	r.items[student.USN] = student
	return nil
}

func (r *fakeStudentRepo) GetByUSN(ctx context.Context, tx *gorm.DB, usn string) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if student, ok := r.items[usn]; ok {
		return student, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Student
	for _, student := range r.items {
		if filters.Name != nil && !strings.Contains(strings.ToLower(student.Name), strings.ToLower(*filters.Name)) {
			continue
		}
		out = append(out, student)
	}
	total := int64(len(out))
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func (r *fakeStudentRepo) ExistsByUSN(ctx context.Context, tx *gorm.DB, usn string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[usn]
	return ok, nil
}

func (r *fakeStudentRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

type fakeFeedbackRepo struct {
	mu     sync.Mutex
	nextID uint
	items  []*models.Feedback

	createErr error
}

func (r *fakeFeedbackRepo) Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	feedback.ID = r.nextID
	feedback.CreatedAt = time.Now()
	r.items = append(r.items, feedback)
	return nil
}

func (r *fakeFeedbackRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.FeedbackFilters) ([]*models.Feedback, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Feedback
	for _, entry := range r.items {
		if filters.Subject != nil && entry.Subject != *filters.Subject {
			continue
		}
		if filters.Rating != nil && entry.Rating != *filters.Rating {
			continue
		}
		out = append(out, entry)
	}
	total := int64(len(out))
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func (r *fakeFeedbackRepo) AverageRating(ctx context.Context, tx *gorm.DB) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return 0, nil
	}
	var sum int
	for _, entry := range r.items {
		sum += entry.Rating
	}
	return float64(sum) / float64(len(r.items)), nil
}

type fakeDashboardRepo struct {
	totalStudents     int64
	totalEvaluations  int64
	evaluatedStudents int64
	completionRate    float64
	averagePercentage float64
	subjects          []repositories.SubjectPerformanceData
	modes             []repositories.ModeDistributionData
	trend             []repositories.ScoreTrendData
	recent            []repositories.RecentEvaluationData

	err error
}

func (r *fakeDashboardRepo) GetTotalStudents(ctx context.Context, tx *gorm.DB) (int64, error) {
	return r.totalStudents, r.err
}

func (r *fakeDashboardRepo) GetTotalEvaluations(ctx context.Context, tx *gorm.DB) (int64, error) {
	return r.totalEvaluations, r.err
}

func (r *fakeDashboardRepo) GetEvaluatedStudents(ctx context.Context, tx *gorm.DB) (int64, error) {
	return r.evaluatedStudents, r.err
}

func (r *fakeDashboardRepo) GetCompletionRate(ctx context.Context, tx *gorm.DB) (float64, error) {
	return r.completionRate, r.err
}

func (r *fakeDashboardRepo) GetAveragePercentage(ctx context.Context, tx *gorm.DB) (float64, error) {
	return r.averagePercentage, r.err
}

func (r *fakeDashboardRepo) GetSubjectPerformance(ctx context.Context, tx *gorm.DB) ([]repositories.SubjectPerformanceData, error) {
	return r.subjects, r.err
}

func (r *fakeDashboardRepo) GetModeDistribution(ctx context.Context, tx *gorm.DB) ([]repositories.ModeDistributionData, error) {
	return r.modes, r.err
}

func (r *fakeDashboardRepo) GetScoreTrend(ctx context.Context, tx *gorm.DB, days int) ([]repositories.ScoreTrendData, error) {
	return r.trend, r.err
}

func (r *fakeDashboardRepo) GetRecentEvaluations(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.RecentEvaluationData, error) {
	if r.err != nil {
		return nil, r.err
	}
	if len(r.recent) > limit {
		return r.recent[:limit], nil
	}
	return r.recent, nil
}

type fakeRepo struct {
	evaluations *fakeEvaluationRepo
	students    *fakeStudentRepo
	feedback    *fakeFeedbackRepo
	dashboard   *fakeDashboardRepo
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		evaluations: &fakeEvaluationRepo{},
		students:    newFakeStudentRepo(),
		feedback:    &fakeFeedbackRepo{},
		dashboard:   &fakeDashboardRepo{},
	}
}

func (r *fakeRepo) Evaluation() repositories.EvaluationRepository { return r.evaluations }
func (r *fakeRepo) Student() repositories.StudentRepository       { return r.students }
func (r *fakeRepo) Feedback() repositories.FeedbackRepository     { return r.feedback }
func (r *fakeRepo) Dashboard() repositories.DashboardRepository   { return r.dashboard }

func (r *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *fakeRepo) Ping(ctx context.Context) error { return nil }
func (r *fakeRepo) Close() error                   { return nil }

// ===== PIPELINE FAKES =====

// fakeRenderer stands in for MuPDF. RenderJPEGPages hands the uploaded file's
// bytes back as the page image, so the fake OCR below can echo them as text
// and each document's extracted text stays traceable through the pipeline.
type fakeRenderer struct {
	diagramPages int
	renderErr    error // RenderPages, the diagram pass
	jpegErr      error // RenderJPEGPages, the OCR pass
}

func (f *fakeRenderer) RenderPages(path string, dpi int) ([]pdf.Page, error) {
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	n := f.diagramPages
	if n == 0 {
		n = 1
	}
	pages := make([]pdf.Page, 0, n)
	for i := 0; i < n; i++ {
		pages = append(pages, pdf.Page{Number: i + 1, Image: image.NewGray(image.Rect(0, 0, 8, 8))})
	}
	return pages, nil
}

func (f *fakeRenderer) RenderJPEGPages(path string, dpi int) ([]pdf.EncodedPage, error) {
	if f.jpegErr != nil {
		return nil, f.jpegErr
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []pdf.EncodedPage{{Number: 1, MIMEType: "image/jpeg", Data: data}}, nil
}

// fakeOCR echoes the page bytes as the extracted text.
type fakeOCR struct{}

func (fakeOCR) ExtractText(ctx context.Context, pages []pdf.EncodedPage) string {
	texts := make([]string, 0, len(pages))
	for _, page := range pages {
		texts = append(texts, string(page.Data))
	}
	return strings.Join(texts, "\n")
}

type fakeGrader struct {
	mu     sync.Mutex
	inputs []ai.GradingInput

	outcome *ai.GradingOutcome
	err     error
}

func (f *fakeGrader) Grade(ctx context.Context, input ai.GradingInput) (*ai.GradingOutcome, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

func (f *fakeGrader) lastInput(t *testing.T) ai.GradingInput {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inputs) == 0 {
		t.Fatal("grader was never called")
	}
	return f.inputs[len(f.inputs)-1]
}

type fakeDetector struct {
	count int
}

func (f *fakeDetector) Count(pages []image.Image) int { return f.count }

// ===== TEST ENVIRONMENT =====

type testEnv struct {
	repo      *fakeRepo
	renderer  *fakeRenderer
	grader    *fakeGrader
	detector  *fakeDetector
	publisher *events.MockEventPublisher
	uploadDir string

	evaluations EvaluationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:      newFakeRepo(),
		renderer:  &fakeRenderer{},
		grader:    &fakeGrader{},
		detector:  &fakeDetector{},
		publisher: events.NewMockEventPublisher(testLogger()),
		uploadDir: t.TempDir(),
	}
	env.grader.outcome = &ai.GradingOutcome{
		Report: "Well done.",
		Analytics: models.Analytics{
			TotalScore: models.ScoreEntry{Awarded: 40, Max: 50, Percentage: 80},
		},
	}

	env.evaluations = NewEvaluationService(
		env.repo,
		testLogger(),
		validator.New(),
		env.renderer,
		fakeOCR{},
		env.grader,
		env.detector,
		env.publisher,
		config.PipelineConfig{
			UploadDir:  env.uploadDir,
			OCRDPI:     150,
			DiagramDPI: 200,
		},
	)
	return env
}

func testDocuments() EvaluationDocuments {
	return EvaluationDocuments{
		QuestionPaper: DocumentUpload{Filename: "qp.pdf", Data: []byte("QUESTION PAPER")},
		AnswerKey:     DocumentUpload{Filename: "key.pdf", Data: []byte("ANSWER KEY")},
		AnswerSheet:   DocumentUpload{Filename: "sheet.pdf", Data: []byte("STUDENT SHEET")},
	}
}
