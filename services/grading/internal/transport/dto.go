package transport

import (
	"time"

	"github.com/Skotchmaster/classroom/services/grading/internal/models"
	"github.com/Skotchmaster/classroom/services/grading/internal/service"
)

type CreateAssignmentRequest struct {
	CourseID    string    `json:"courseId" validate:"required,max=36"`
	Title       string    `json:"title" validate:"required,min=2,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	DueAt       time.Time `json:"dueAt"`
}

type UpdateAssignmentRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	DueAt       *time.Time `json:"dueAt"`
}

type SubmitRequest struct {
	Content string `json:"content" validate:"required,max=20000"`
}

type GradeRequest struct {
	Grade    *float64 `json:"grade" validate:"required,min=0,max=100"`
	Feedback string   `json:"feedback" validate:"max=2000"`
}

type AssignmentSummary struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	Title     string    `json:"title"`
	DueAt     time.Time `json:"dueAt"`
	TeacherID string    `json:"teacherId"`
}

// AssignmentDetails carries every submission for the owner and only the
// caller's own for anyone else.
type AssignmentDetails struct {
	AssignmentSummary
	Description  string              `json:"description"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	Submissions  []models.Submission `json:"submissions,omitempty"`
	MySubmission *models.Submission  `json:"mySubmission,omitempty"`
}

func NewAssignmentSummary(a *models.Assignment) AssignmentSummary {
	return AssignmentSummary{
		ID:        a.ID,
		CourseID:  a.CourseID,
		Title:     a.Title,
		DueAt:     a.DueAt,
		TeacherID: a.TeacherID,
	}
}

func NewAssignmentSummaries(items []models.Assignment) []AssignmentSummary {
	out := make([]AssignmentSummary, len(items))
	for i := range items {
		out[i] = NewAssignmentSummary(&items[i])
	}
	return out
}

func NewAssignmentDetails(v *service.View) AssignmentDetails {
	return AssignmentDetails{
		AssignmentSummary: NewAssignmentSummary(v.Assignment),
		Description:       v.Assignment.Description,
		CreatedAt:         v.Assignment.CreatedAt,
		UpdatedAt:         v.Assignment.UpdatedAt,
		Submissions:       v.Submissions,
		MySubmission:      v.MySubmission,
	}
}
