package validator

// EvaluateRequest carries the non-file fields of the multipart evaluation
// upload. The three PDFs arrive as form files next to it.
type EvaluateRequest struct {
	USN          string `form:"usn" json:"usn" validate:"required,usn"`
	Subject      string `form:"subject" json:"subject" validate:"required,max=200"`
	Mode         string `form:"mode" json:"mode" validate:"evaluation_mode"`
	ScoringRules string `form:"rules" json:"rules" validate:"omitempty,max=4000"`
	EvaluatedBy  string `form:"evaluated_by" json:"evaluated_by" validate:"omitempty,max=255"`
}

// FeedbackCreateRequest is a platform rating/comment submission.
type FeedbackCreateRequest struct {
	USN     string `json:"usn" validate:"required,usn"`
	Role    string `json:"role" validate:"omitempty,oneof=teacher student admin"`
	Rating  int    `json:"rating" validate:"required,rating"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
}

// StudentCreateRequest adds one student to the roster.
type StudentCreateRequest struct {
	USN  string `json:"usn" validate:"required,usn"`
	Name string `json:"name" validate:"omitempty,max=200"`
}
