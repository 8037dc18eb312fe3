package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeGigNotFound          = "GIG001"
	ErrCodeApplicationNotFound  = "GIG002"
	ErrCodeForbidden            = "GIG003"
	ErrCodeDuplicateApplication = "GIG004"
	ErrCodeNotAccepting         = "GIG005"
	ErrCodeAlreadyAssigned      = "GIG006"
	ErrCodeInvalidTransition    = "GIG007"
	ErrCodeInvalidSort          = "GIG008"
	ErrCodeConflict             = "GIG009"
	ErrCodeValidation           = "GIG010"
	ErrCodeTimeout              = "GIG011"
)

// Errors
var (
	ErrGigNotFound                 = errors.New("gig not found")
	ErrApplicationNotFound         = errors.New("application not found")
	ErrForbidden                   = errors.New("actor is not allowed to perform this action")
	ErrDuplicateApplication        = errors.New("applicant already applied to this gig")
	ErrGigNotAcceptingApplications = errors.New("gig is not accepting applications")
	ErrGigAlreadyAssigned          = errors.New("gig is already assigned")
	ErrInvalidTransition           = errors.New("invalid status transition")
	ErrInvalidSort                 = errors.New("sort key requires a geo filter")
	ErrVersionConflict             = errors.New("gig was modified concurrently")
	ErrApplicationNotPending       = errors.New("application is not pending")
	ErrTimeout                     = errors.New("operation timed out")
)

// InvalidTransitionError names the current and requested states; it is
// never silently corrected.
type InvalidTransitionError struct {
	From GigStatus
	To   GigStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func NewInvalidTransitionError(from, to GigStatus) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}

// GigError carries a stable code for the HTTP layer.
type GigError struct {
	Code    string
	Message string
	Err     error
}

func (e *GigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GigError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewGigNotFoundError() *GigError {
	return &GigError{
		Code:    ErrCodeGigNotFound,
		Message: "Gig not found",
		Err:     ErrGigNotFound,
	}
}

func NewApplicationNotFoundError() *GigError {
	return &GigError{
		Code:    ErrCodeApplicationNotFound,
		Message: "Application not found",
		Err:     ErrApplicationNotFound,
	}
}

func NewForbiddenError(action string) *GigError {
	return &GigError{
		Code:    ErrCodeForbidden,
		Message: fmt.Sprintf("Not allowed to %s", action),
		Err:     ErrForbidden,
	}
}

func NewDuplicateApplicationError() *GigError {
	return &GigError{
		Code:    ErrCodeDuplicateApplication,
		Message: "You have already applied to this gig",
		Err:     ErrDuplicateApplication,
	}
}

func NewNotAcceptingError(status GigStatus) *GigError {
	return &GigError{
		Code:    ErrCodeNotAccepting,
		Message: fmt.Sprintf("Gig is not accepting applications (status %q)", status),
		Err:     ErrGigNotAcceptingApplications,
	}
}

func NewAlreadyAssignedError() *GigError {
	return &GigError{
		Code:    ErrCodeAlreadyAssigned,
		Message: "Another application has already been accepted for this gig",
		Err:     ErrGigAlreadyAssigned,
	}
}

func NewInvalidSortError() *GigError {
	return &GigError{
		Code:    ErrCodeInvalidSort,
		Message: "Sorting by distance requires a geo filter",
		Err:     ErrInvalidSort,
	}
}
