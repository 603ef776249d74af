package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/classroom/pkg/principal"
)

type User struct {
	ID           string         `gorm:"primaryKey;size:36"        json:"id"`
	Firstname    string         `gorm:"size:50;not null"          json:"firstname"`
	Lastname     string         `gorm:"size:50;not null"          json:"lastname"`
	Email        string         `gorm:"size:254;uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null"                  json:"-"`
	Role         principal.Role `gorm:"size:16;not null"          json:"role"`
	Enabled      bool           `gorm:"not null"                  json:"-"`
	Active       bool           `gorm:"not null"                  json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.Firstname + " " + u.Lastname)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
