package service

import "errors"

var (
	ErrValidation = errors.New("validation")

	ErrBadCredentials  = errors.New("bad credentials")
	ErrAccountDisabled = errors.New("account disabled")
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrRefreshExpired   = errors.New("refresh token expired")

	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrPasswordMismatch   = errors.New("password and confirmation do not match")
	ErrInvalidRole        = errors.New("invalid role")

	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidCurrentPassword = errors.New("current password does not match")
	ErrAlreadyActivated       = errors.New("account already activated")
	ErrAlreadyDeactivated     = errors.New("account already deactivated")
)
