package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")

	// ErrRevocationDisabled is returned when a token should be deactivated but tokens are not persisted
	ErrRevocationDisabled = errors.New("token revocation is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")
)

// Entity errors. Each wraps ErrResourceNotFound so callers can match either.
var (
	ErrUserNotFound        = NewResourceNotFoundError("user not found")
	ErrInstituteNotFound   = NewResourceNotFoundError("institute not found")
	ErrGroupNotFound       = NewResourceNotFoundError("group not found")
	ErrStudentNotFound     = NewResourceNotFoundError("student not found")
	ErrAchievementNotFound = NewResourceNotFoundError("achievement record not found")
	ErrResultNotFound      = NewResourceNotFoundError("result not found")
	ErrDefinitionNotFound  = NewResourceNotFoundError("result definition not found")
)

// Conflict errors
var (
	ErrEmailAlreadyExists = NewConflictError("email already exists")
	ErrGroupNameExists    = NewConflictError("group with this name already exists")
	ErrStudentExists      = NewConflictError("student with this email or phone already exists")
)

// GTO errors
var (
	ErrInvalidLevel = NewCustomError(ErrValidationFailed, "level must be one of gold, silver, bronze")
	ErrInvalidScope = NewCustomError(ErrValidationFailed, "exactly one of institute_id, group_id, student_id is required")
)

// Kind is the caller-facing category of an error.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindValidation   Kind = "VALIDATION_FAILURE"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindConflict     Kind = "CONFLICT"
	KindUnsupported  Kind = "UNSUPPORTED"
	KindInternal     Kind = "INTERNAL_FAILURE"
)

// KindOf classifies err into one of the taxonomy kinds. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrInvalidCredentials, ErrTokenExpired, ErrTokenInvalid, ErrTokenRevoked, ErrTokenNotFound, ErrAccountDisabled):
		return KindUnauthorized
	case errors.Is(err, ErrResourceNotFound):
		return KindNotFound
	case Is(err, ErrValidationFailed, ErrBadRequest, ErrInvalidEmail, ErrInvalidPassword):
		return KindValidation
	case errors.Is(err, ErrPermissionDenied):
		return KindForbidden
	case Is(err, ErrConflict, ErrResourceAlreadyExists):
		return KindConflict
	case errors.Is(err, ErrRevocationDisabled):
		return KindUnsupported
	default:
		return KindInternal
	}
}

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

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a validation failure carrying a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
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

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}
