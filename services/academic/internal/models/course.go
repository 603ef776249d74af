package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const InviteCodeLength = 10

// Member is a user as seen by the academic service. ID is the identity
// service's user id; names are copied from the forwarded principal.
type Member struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type Course struct {
	ID               string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name             string    `gorm:"not null;uniqueIndex" json:"name"`
	Description      string    `json:"description"`
	InviteCode       string    `gorm:"type:varchar(10);not null;uniqueIndex" json:"-"`
	TeacherID        string    `gorm:"type:varchar(36);not null;index" json:"teacherId"`
	TeacherFirstname string    `json:"teacherFirstname"`
	TeacherLastname  string    `json:"teacherLastname"`
	Members          []Member  `gorm:"many2many:course_members;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.InviteCode == "" {
		c.InviteCode = NewInviteCode()
	}
	return nil
}

func (c *Course) HasMember(id string) bool {
	for _, m := range c.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

func NewInviteCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:InviteCodeLength]
}
