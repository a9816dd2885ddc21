package apperrors

import "errors"

// Error classes. Every domain error below wraps exactly one of these, so
// callers can branch on the class with errors.Is.
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidationFailed = errors.New("validation failed")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")
)

// kindError is a named domain error belonging to one error class.
type kindError struct {
	class error
	msg   string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.class }

func newKind(class error, msg string) error {
	return &kindError{class: class, msg: msg}
}

// Account errors
var (
	ErrAccountNotFound    = newKind(ErrResourceNotFound, "account not found")
	ErrAdminNotFound      = newKind(ErrResourceNotFound, "admin not found")
	ErrEmailAlreadyExists = newKind(ErrConflict, "email already exists")
	ErrRollNumberExists   = newKind(ErrConflict, "roll number already exists")
	ErrUsernameExists     = newKind(ErrConflict, "username already exists")
	ErrNegativeCredit     = newKind(ErrValidationFailed, "credit amount must not be negative")
)

// Achievement errors
var (
	ErrAchievementNotFound = newKind(ErrResourceNotFound, "achievement not found")
	ErrAlreadyApproved     = newKind(ErrConflict, "achievement already approved")
	ErrNotOwner            = newKind(ErrPermissionDenied, "not the owner of this resource")
	ErrAdminOnly           = newKind(ErrPermissionDenied, "administrator role required")
)

// ERP errors
var (
	ErrERPNotFound     = newKind(ErrResourceNotFound, "ERP record not found")
	ErrAlreadyVerified = newKind(ErrConflict, "ERP record already verified")
	ErrERPLocked       = newKind(ErrConflict, "cannot update a verified ERP record")
	ErrERPNotSubmitted = newKind(ErrConflict, "ERP record has not been submitted")
	ErrERPNotVerified  = newKind(ErrConflict, "ERP record is not verified")
	ErrERPIncomplete   = newKind(ErrConflict, "ERP record is incomplete")
)

// Announcement errors
var (
	ErrAnnouncementNotFound = newKind(ErrResourceNotFound, "announcement not found")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a validation error carrying per-field details.
func NewValidationError(message string, details map[string]interface{}) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: details,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
