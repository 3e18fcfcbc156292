package dto

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/gtostat/internal/pkg/validation"
)

// ErrorCode is the stable, machine-readable part of an error response
type ErrorCode string

const (
	// Login and tokens
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeInvalidEmail       ErrorCode = "AUTH_002"
	ErrorCodeInvalidPassword    ErrorCode = "AUTH_003"
	ErrorCodeAccountDisabled    ErrorCode = "AUTH_004"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken       ErrorCode = "AUTH_006"
	ErrorCodeTokenNotFound      ErrorCode = "AUTH_007"
	ErrorCodeUnauthorized       ErrorCode = "AUTH_008"
	ErrorCodeForbidden          ErrorCode = "AUTH_009"
	ErrorCodeRevocationDisabled ErrorCode = "AUTH_010"

	// Institutes, groups, students and their records
	ErrorCodeResourceNotFound ErrorCode = "RES_001"
	ErrorCodeConflict         ErrorCode = "RES_002"

	// Request input
	ErrorCodeValidationFailed ErrorCode = "VAL_001"
	ErrorCodeInvalidLevel     ErrorCode = "GTO_001"
	ErrorCodeInvalidScope     ErrorCode = "GTO_002"

	ErrorCodeInternalServer ErrorCode = "SRV_001"
)

// ErrorDetail describes one failure. Details carries per-field errors or the wrapped message.
type ErrorDetail struct {
	Code    ErrorCode   `json:"code" example:"GTO_002"`
	Message string      `json:"message" example:"exactly one of institute_id, group_id, student_id is required"`
	Field   string      `json:"field,omitempty" example:"student_id"`
	Details interface{} `json:"details,omitempty"`
}

// FieldError is a single rejected request field
type FieldError struct {
	Field   string `json:"field" example:"level"`
	Message string `json:"message" example:"level must be one of gold, silver, bronze"`
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp" example:"2026-09-01T08:30:00Z"`
}

func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{Code: code, Message: message}
}

func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

func NewErrorResponse(detail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     detail,
		Timestamp: time.Now(),
	}
}

// HandleValidationError turns a gin binding error into a detail listing every rejected field.
// Malformed bodies that never reached the validator are reported as a whole.
func HandleValidationError(err error) *ErrorDetail {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewErrorDetail(ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
	}

	fields := make([]FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, FieldError{Field: fe.Field(), Message: validation.FormatFieldError(fe)})
	}

	detail := NewErrorDetail(ErrorCodeValidationFailed, "Validation failed").WithDetails(fields)
	if len(fields) == 1 {
		detail.WithField(fields[0].Field)
	}
	return detail
}
