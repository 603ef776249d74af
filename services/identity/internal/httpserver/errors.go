package httpserver

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/classroom/pkg/apperr"
	"github.com/Skotchmaster/classroom/services/identity/internal/service"
)

var (
	errBadCredentials = apperr.New(http.StatusUnauthorized, "BAD_CREDENTIALS", "invalid email or password")
	errTooMany        = apperr.New(http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "too many failed login attempts, try again later")
)

// authError keeps credential failures indistinguishable on the wire.
func authError(err error) error {
	switch {
	case errors.Is(err, service.ErrBadCredentials),
		errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrUserNotFound):
		return errBadCredentials.Wrap(err)
	case errors.Is(err, service.ErrTooManyAttempts):
		return errTooMany
	}
	return mapError(err)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		return apperr.New(http.StatusUnauthorized, "INVALID_TOKEN", "invalid token").Wrap(err)
	case errors.Is(err, service.ErrInvalidTokenType):
		return apperr.New(http.StatusUnauthorized, "INVALID_TOKEN_TYPE", "invalid token type")
	case errors.Is(err, service.ErrRefreshExpired):
		return apperr.New(http.StatusUnauthorized, "REFRESH_TOKEN_EXPIRED", "refresh token expired")
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return apperr.New(http.StatusBadRequest, "EMAIL_ALREADY_EXISTS", "email already exists")
	case errors.Is(err, service.ErrPasswordMismatch):
		return apperr.New(http.StatusBadRequest, "PASSWORD_MISMATCH", "password and confirmation do not match")
	case errors.Is(err, service.ErrInvalidRole):
		return apperr.New(http.StatusBadRequest, "INVALID_ROLE", "invalid role")
	case errors.Is(err, service.ErrValidation):
		return apperr.New(http.StatusBadRequest, apperr.CodeValidation, "validation failed")
	case errors.Is(err, service.ErrUserNotFound):
		return apperr.New(http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, service.ErrInvalidCurrentPassword):
		return apperr.New(http.StatusBadRequest, "INVALID_CURRENT_PASSWORD", "current password does not match")
	case errors.Is(err, service.ErrAlreadyActivated):
		return apperr.New(http.StatusBadRequest, "ACCOUNT_ALREADY_ACTIVATED", "account is already activated")
	case errors.Is(err, service.ErrAlreadyDeactivated):
		return apperr.New(http.StatusBadRequest, "ACCOUNT_ALREADY_DEACTIVATED", "account is already deactivated")
	case errors.Is(err, service.ErrAccountDisabled):
		return errBadCredentials.Wrap(err)
	}
	return err
}
