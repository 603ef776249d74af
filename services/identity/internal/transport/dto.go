package transport

import (
	"time"

	"github.com/Skotchmaster/classroom/services/identity/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Firstname       string `json:"firstname" validate:"required,min=2,max=50,personname"`
	Lastname        string `json:"lastname" validate:"required,min=2,max=50,personname"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=10,max=50,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	Role            string `json:"role" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type ProfileUpdateRequest struct {
	Firstname string `json:"firstname" validate:"required,min=2,max=50,personname"`
	Lastname  string `json:"lastname" validate:"required,min=2,max=50,personname"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=10,max=50,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type RoleChangeRequest struct {
	Role string `json:"role" validate:"required"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Active    bool   `json:"isActive"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
		Role:      string(u.Role),
		Active:    u.Active,
	}
}

func NewTokenResponse(token string, ttl time.Duration) TokenResponse {
	return TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresIn: int64(ttl.Seconds())}
}
