package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/models/dto"
	"github.com/yigit/gtostat/internal/pkg/auth"
)

// Context keys set by TokenAuth
const (
	ContextUserKey  = "user"
	ContextEmailKey = "email"
	ContextTokenKey = "token"
)

// Authenticator resolves a bearer token into the active user it was issued for
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	authenticator Authenticator
	logger        zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger,
	}
}

func unauthorized(c *gin.Context, details string) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").WithDetails(details)
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// TokenAuth validates the bearer token. Every failure is answered with 401.
func (m *AuthMiddleware) TokenAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Swagger UI sometimes puts the token in the query
		if authHeader == "" {
			authHeader = c.Query("token")
		}
		if authHeader == "" {
			unauthorized(c, "Authorization header missing")
			return
		}

		tokenString, err := auth.ExtractBearerToken(strings.Trim(authHeader, "\"'"))
		if err != nil {
			unauthorized(c, "Invalid token format")
			return
		}

		user, err := m.authenticator.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			m.logger.Debug().Err(err).Str("path", c.FullPath()).Msg("Token rejected")
			unauthorized(c, "Could not validate credentials")
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextEmailKey, user.Email)
		c.Set(ContextTokenKey, tokenString)

		c.Next()
	}
}

// RequireSuperuser lets only superusers through. It must run after TokenAuth.
func (m *AuthMiddleware) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			unauthorized(c, "User information not found")
			return
		}

		if !user.IsSuperuser {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}

// CurrentUser returns the user set by TokenAuth
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// CurrentToken returns the raw bearer token accepted by TokenAuth
func CurrentToken(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}
