package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/models/dto"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator struct {
	users map[string]*models.User
}

func (a *stubAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := a.users[token]; ok {
		return u, nil
	}
	return nil, apperrors.ErrTokenInvalid
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    dto.ErrorCode `json:"code"`
		Message string        `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func newAuthRouter() *gin.Engine {
	m := NewAuthMiddleware(&stubAuthenticator{users: map[string]*models.User{
		"user-token":  {ID: 1, Email: "user@example.com", IsActive: true},
		"admin-token": {ID: 2, Email: "admin@example.com", IsActive: true, IsSuperuser: true},
	}}, zerolog.Nop())

	r := gin.New()
	protected := r.Group("", m.TokenAuth())
	protected.GET("/me", func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": user.Email, "token": CurrentToken(c)})
	})
	protected.GET("/admin", m.RequireSuperuser(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestTokenAuth(t *testing.T) {
	r := newAuthRouter()

	tests := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"bare bearer", "/me", "Bearer", http.StatusUnauthorized},
		{"unknown token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"bearer token", "/me", "Bearer user-token", http.StatusOK},
		{"raw token", "/me", "user-token", http.StatusOK},
		{"quoted token", "/me", `"Bearer user-token"`, http.StatusOK},
		{"query token", "/me?token=user-token", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
				body := decodeError(t, w)
				assert.False(t, body.Success)
				assert.Equal(t, dto.ErrorCodeUnauthorized, body.Error.Code)
			}
		})
	}
}

func TestTokenAuthSetsContext(t *testing.T) {
	r := newAuthRouter()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user@example.com", body["email"])
	assert.Equal(t, "user-token", body["token"])
}

func TestRequireSuperuser(t *testing.T) {
	r := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrorCodeForbidden, decodeError(t, w).Error.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireSuperuserWithoutUser(t *testing.T) {
	m := NewAuthMiddleware(&stubAuthenticator{}, zerolog.Nop())
	r := gin.New()
	r.GET("/admin", m.RequireSuperuser(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperrors.ErrStudentNotFound, http.StatusNotFound},
		{fmt.Errorf("lookup: %w", apperrors.ErrGroupNotFound), http.StatusNotFound},
		{apperrors.ErrInvalidLevel, http.StatusBadRequest},
		{apperrors.ErrInvalidScope, http.StatusBadRequest},
		{apperrors.NewBadRequestError("read only"), http.StatusBadRequest},
		{apperrors.ErrTokenRevoked, http.StatusUnauthorized},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{apperrors.NewForbiddenError("no"), http.StatusForbidden},
		{apperrors.ErrStudentExists, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusOf(tt.err), tt.err.Error())
	}
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"not found", apperrors.ErrInstituteNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"disabled", apperrors.ErrAccountDisabled, http.StatusUnauthorized, dto.ErrorCodeAccountDisabled},
		{"expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
		{"conflict", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeConflict},
		{"validation", apperrors.NewValidationError("course must be greater than 0"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"level", apperrors.ErrInvalidLevel, http.StatusBadRequest, dto.ErrorCodeInvalidLevel},
		{"scope", fmt.Errorf("tally: %w", apperrors.ErrInvalidScope), http.StatusBadRequest, dto.ErrorCodeInvalidScope},
		{"revocation disabled", apperrors.ErrRevocationDisabled, http.StatusNotImplemented, dto.ErrorCodeRevocationDisabled},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { HandleAPIError(c, tt.err) })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.code, body.Error.Code)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, body.Error.Message, "connection reset")
			}
		})
	}
}

func TestRegisterValidatorsBindsDomainTags(t *testing.T) {
	require.NoError(t, RegisterValidators())

	type request struct {
		Sex   string `json:"sex" binding:"required,sex"`
		Level string `json:"level" binding:"required,gto_level"`
	}

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBindError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", stringsReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	ok := post(fmt.Sprintf(`{"sex":%q,"level":"gold"}`, models.SexFemale))
	assert.Equal(t, http.StatusNoContent, ok.Code)

	bad := post(`{"sex":"other","level":"platinum"}`)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Equal(t, dto.ErrorCodeValidationFailed, decodeError(t, bad).Error.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	h := CORS([]string{"http://localhost:3000"}, r)

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger(t *testing.T) {
	var buf jsonLines
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.Len(t, buf.entries, 1)
	entry := buf.entries[0]
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "/missing", entry["path"])
	assert.EqualValues(t, http.StatusNotFound, entry["status"])
}
