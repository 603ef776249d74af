package service

import "errors"

var (
	ErrValidation          = errors.New("validation")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrAssignmentExists    = errors.New("assignment already exists")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrSubmissionForbidden = errors.New("submission belongs to another student")
	ErrCourseNotFound      = errors.New("course not found")
	ErrNotMember           = errors.New("not a member of the course")
	ErrNotOwner            = errors.New("not the course owner")
	ErrCourseDirectoryDown = errors.New("course directory unavailable")
)
