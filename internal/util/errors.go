package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrInstitutionNotFound  = errors.New("institution not found")
	ErrInstitutionCodeTaken = errors.New("institution code already in use")
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrExamNotFound         = errors.New("exam not found")
	ErrExamNotPublished     = errors.New("exam not published or not accessible")
	ErrExamNotOpen          = errors.New("exam is outside its scheduled window")
	ErrSessionNotFound      = errors.New("exam session not found")
	ErrAlreadySubmitted     = errors.New("exam already submitted")
	ErrSessionNotInProgress = errors.New("exam session is not in progress")
)
