package service

import "errors"

var (
	ErrValidation       = errors.New("validation")
	ErrCourseNotFound   = errors.New("course not found")
	ErrCourseExists     = errors.New("course already exists")
	ErrNotMember        = errors.New("not a member of the course")
	ErrNotOwner         = errors.New("not the course owner")
	ErrOwnerCannotLeave = errors.New("course owner cannot leave the course")
)
