package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/gtostat/internal/app/models/dto"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
	"github.com/yigit/gtostat/internal/pkg/logger"
)

// --- Central Error Handling ---

// StatusOf maps an error kind onto an HTTP status
func StatusOf(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status := StatusOf(err)
	detail := errorDetailOf(err)

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// errorDetailOf builds the response body. Internal errors never expose their message.
func errorDetailOf(err error) *dto.ErrorDetail {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Incorrect email or password")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return dto.NewErrorDetail(dto.ErrorCodeAccountDisabled, "Account is disabled")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		return dto.NewErrorDetail(dto.ErrorCodeTokenNotFound, "Token not found")
	case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrTokenRevoked):
		return dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrInvalidEmail):
		return dto.NewErrorDetail(dto.ErrorCodeInvalidEmail, "Invalid email").WithDetails(err.Error())
	case errors.Is(err, apperrors.ErrInvalidPassword):
		return dto.NewErrorDetail(dto.ErrorCodeInvalidPassword, "Invalid password").WithDetails(err.Error())
	case errors.Is(err, apperrors.ErrRevocationDisabled):
		return dto.NewErrorDetail(dto.ErrorCodeRevocationDisabled, "Token revocation is disabled, the token stays valid until it expires")
	case errors.Is(err, apperrors.ErrInvalidLevel):
		return dto.NewErrorDetail(dto.ErrorCodeInvalidLevel, err.Error()).WithField("level")
	case errors.Is(err, apperrors.ErrInvalidScope):
		return dto.NewErrorDetail(dto.ErrorCodeInvalidScope, err.Error())
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error())
	case apperrors.KindValidation:
		return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").WithDetails(err.Error())
	case apperrors.KindUnauthorized:
		return dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
	case apperrors.KindForbidden:
		return dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")
	case apperrors.KindConflict:
		return dto.NewErrorDetail(dto.ErrorCodeConflict, err.Error())
	default:
		return dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// HandleBindError responds 400 for a request body or query that failed binding
func HandleBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}
