package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusSubmitted = "SUBMITTED"
	StatusLate      = "LATE"
)

type Assignment struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CourseID    string    `gorm:"type:varchar(36);not null;index" json:"courseId"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	DueAt       time.Time `gorm:"not null" json:"dueAt"`
	TeacherID   string    `gorm:"type:varchar(36);not null" json:"teacherId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (a *Assignment) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Submission is a student's answer to an assignment. A student has at most
// one per assignment; submitting again replaces its content.
type Submission struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	AssignmentID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_submission_student" json:"assignmentId"`
	StudentID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_submission_student" json:"studentId"`
	Firstname    string    `json:"firstname"`
	Lastname     string    `json:"lastname"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Status       string    `gorm:"type:varchar(16);not null" json:"status"`
	Grade        *float64  `json:"grade"`
	Feedback     string    `json:"feedback"`
	SubmittedAt  time.Time `json:"submittedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (s *Submission) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// StatusAt is LATE once the due date has passed.
func (a *Assignment) StatusAt(t time.Time) string {
	if t.After(a.DueAt) {
		return StatusLate
	}
	return StatusSubmitted
}
