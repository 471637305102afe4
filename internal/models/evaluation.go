package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EvaluationStatus string

const (
	EvaluationProcessing EvaluationStatus = "processing"
	EvaluationCompleted  EvaluationStatus = "completed"
	EvaluationFailed     EvaluationStatus = "failed"
)

type EvaluationMode string

const (
	ModeLenient  EvaluationMode = "Lenient"
	ModeModerate EvaluationMode = "Moderate"
	ModeStrict   EvaluationMode = "Strict"
)

// ValidMode reports whether mode is one of the three grading modes.
func ValidMode(mode EvaluationMode) bool {
	switch mode {
	case ModeLenient, ModeModerate, ModeStrict:
		return true
	}
	return false
}

// Evaluation is one graded answer sheet for one student.
type Evaluation struct {
	ID      uint             `json:"id" gorm:"primaryKey"`
	USN     string           `json:"usn" gorm:"not null;index;size:20" validate:"required"`
	Subject string           `json:"subject" gorm:"not null;index;size:200"`
	Mode    EvaluationMode   `json:"mode" gorm:"not null;size:20;default:Moderate"`
	Status  EvaluationStatus `json:"status" gorm:"not null;index;size:20;default:processing"`

	// Pipeline inputs
	ScoringRules string `json:"scoring_rules" gorm:"type:text"`
	EvaluatedBy  string `json:"evaluated_by" gorm:"index;size:255"`

	// Extracted text, kept for the debug view
	QuestionText string `json:"question_text,omitempty" gorm:"type:text"`
	KeyText      string `json:"key_text,omitempty" gorm:"type:text"`
	StudentText  string `json:"student_text,omitempty" gorm:"type:text"`

	// Pipeline outputs
	DiagramCount  int            `json:"diagram_count"`
	Report        string         `json:"report" gorm:"type:text"` // student-facing Markdown
	Analytics     datatypes.JSON `json:"analytics" gorm:"type:jsonb"`
	OriginalScore float64        `json:"original_score"`
	AdjustedScore float64        `json:"adjusted_score"`
	MaxScore      float64        `json:"max_score"`
	Percentage    float64        `json:"percentage"`

	// Set when Status is failed
	Error *string `json:"error,omitempty" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}

// ===== ANALYTICS PAYLOAD =====
//
// Shape of the JSON block the grading model is instructed to emit. Stored
// verbatim in Evaluation.Analytics; these structs are the decoded view.

type ScoreEntry struct {
	Awarded    float64 `json:"awarded"`
	Max        float64 `json:"max"`
	Percentage float64 `json:"percentage"`
}

type SectionScore struct {
	Section    string  `json:"section"`
	Awarded    float64 `json:"awarded"`
	Max        float64 `json:"max"`
	Percentage float64 `json:"percentage"`
}

type QuestionScore struct {
	Question   string  `json:"question"`
	Awarded    float64 `json:"awarded"`
	Max        float64 `json:"max"`
	Percentage float64 `json:"percentage"`
}

type DiagramPerformance struct {
	RequiredEstimate int `json:"required_estimate"`
	FoundEstimate    int `json:"found_estimate"`
}

type BreakdownEntry struct {
	Question     string  `json:"question"`
	Part         string  `json:"part"`
	Description  string  `json:"description"` // 2-5 word summary of the key concept
	Feedback     string  `json:"feedback"`
	MarksAwarded float64 `json:"marks_awarded"`
	MaxMarks     float64 `json:"max_marks"`
}

type Analytics struct {
	TotalScore         ScoreEntry         `json:"total_score"`
	SectionWise        []SectionScore     `json:"section_wise"`
	QuestionWise       []QuestionScore    `json:"question_wise"`
	DiagramPerformance DiagramPerformance `json:"diagram_performance"`
	DetailedBreakdown  []BreakdownEntry   `json:"detailed_breakdown"`
}

// IsZero reports whether no analytics were recovered from the model output.
func (a Analytics) IsZero() bool {
	return a.TotalScore == ScoreEntry{} &&
		len(a.SectionWise) == 0 &&
		len(a.QuestionWise) == 0 &&
		len(a.DetailedBreakdown) == 0
}
