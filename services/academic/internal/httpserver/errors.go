package httpserver

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/classroom/pkg/apperr"
	"github.com/Skotchmaster/classroom/services/academic/internal/service"
)

func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		return apperr.New(http.StatusNotFound, "COURSE_NOT_FOUND", "course not found")
	case errors.Is(err, service.ErrCourseExists):
		return apperr.New(http.StatusBadRequest, "COURSE_ALREADY_EXISTS", "course with this name already exists")
	case errors.Is(err, service.ErrNotMember):
		return apperr.New(http.StatusForbidden, "INVALID_MEMBER", "not a member of this course")
	case errors.Is(err, service.ErrNotOwner):
		return apperr.New(http.StatusForbidden, "NOT_COURSE_OWNER", "only the course owner can do this")
	case errors.Is(err, service.ErrOwnerCannotLeave):
		return apperr.New(http.StatusBadRequest, "OWNER_CANNOT_LEAVE", "the course owner cannot leave the course")
	case errors.Is(err, service.ErrValidation):
		return apperr.New(http.StatusBadRequest, apperr.CodeValidation, "validation failed")
	}
	return err
}
