package models

import (
	"time"
)

// Feedback is a rating/comment a user leaves about the platform itself,
// not about a graded paper.
type Feedback struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	USN     string `json:"usn" gorm:"not null;index;size:20"`
	Role    string `json:"role" gorm:"size:50"`
	Rating  int    `json:"rating" gorm:"not null"`
	Comment string `json:"comment" gorm:"type:text"`
	Subject string `json:"subject" gorm:"size:200;default:General"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Feedback) TableName() string {
	return "feedback"
}
