package models

import (
	"time"

	"gorm.io/gorm"
)

// Student is one roster entry. The roster drives the dashboard's
// pending/completion numbers; evaluations reference it by USN.
type Student struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	USN  string `json:"usn" gorm:"not null;uniqueIndex;size:20" validate:"required,usn"`
	Name string `json:"name" gorm:"size:200"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Student) TableName() string {
	return "students"
}
