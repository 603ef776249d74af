package httpserver

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/classroom/pkg/apperr"
	"github.com/Skotchmaster/classroom/services/grading/internal/service"
)

func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return apperr.New(http.StatusNotFound, "ASSIGNMENT_NOT_FOUND", "assignment not found")
	case errors.Is(err, service.ErrAssignmentExists):
		return apperr.New(http.StatusBadRequest, "ASSIGNMENT_ALREADY_EXISTS", "assignment with this title already exists in the course")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return apperr.New(http.StatusNotFound, "SUBMISSION_NOT_FOUND", "submission not found")
	case errors.Is(err, service.ErrSubmissionForbidden):
		return apperr.New(http.StatusForbidden, "SUBMISSION_ACCESS_DENIED", "submission belongs to another student")
	case errors.Is(err, service.ErrCourseNotFound):
		return apperr.New(http.StatusNotFound, "COURSE_NOT_FOUND", "course not found")
	case errors.Is(err, service.ErrNotMember):
		return apperr.New(http.StatusForbidden, "INVALID_MEMBER", "not a member of this course")
	case errors.Is(err, service.ErrNotOwner):
		return apperr.New(http.StatusForbidden, "NOT_COURSE_OWNER", "only the course owner can do this")
	case errors.Is(err, service.ErrCourseDirectoryDown):
		return apperr.New(http.StatusBadGateway, apperr.CodeBadGateway, "course directory unavailable").Wrap(err)
	case errors.Is(err, service.ErrValidation):
		return apperr.New(http.StatusBadRequest, apperr.CodeValidation, "validation failed")
	}
	return err
}
