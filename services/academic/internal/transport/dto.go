package transport

import (
	"time"

	"github.com/Skotchmaster/classroom/services/academic/internal/models"
	"github.com/Skotchmaster/classroom/services/academic/internal/search"
)

type CreateCourseRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"required,max=2000"`
}

type UpdateCourseRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type CourseSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	TeacherID        string `json:"teacherId"`
	TeacherFirstname string `json:"teacherFirstname"`
	TeacherLastname  string `json:"teacherLastname"`
}

// CourseDetails is only ever shown to members, so it carries the invite code.
type CourseDetails struct {
	CourseSummary
	InviteCode string          `json:"inviteCode"`
	Members    []models.Member `json:"members"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func NewCourseSummary(c *models.Course) CourseSummary {
	return CourseSummary{
		ID:               c.ID,
		Name:             c.Name,
		Description:      c.Description,
		TeacherID:        c.TeacherID,
		TeacherFirstname: c.TeacherFirstname,
		TeacherLastname:  c.TeacherLastname,
	}
}

func NewCourseSummaries(items []models.Course) []CourseSummary {
	out := make([]CourseSummary, len(items))
	for i := range items {
		out[i] = NewCourseSummary(&items[i])
	}
	return out
}

func SummaryFromDoc(d search.Doc) CourseSummary {
	return CourseSummary(d)
}

func NewCourseDetails(c *models.Course) CourseDetails {
	members := c.Members
	if members == nil {
		members = []models.Member{}
	}
	return CourseDetails{
		CourseSummary: NewCourseSummary(c),
		InviteCode:    c.InviteCode,
		Members:       members,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
