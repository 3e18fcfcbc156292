package dto

import "github.com/yigit/gtostat/internal/app/models"

// LoginRequest represents login credentials. They are accepted as JSON or as form/query values.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// TokenResponse represents an issued access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"216000"`
}

// ResetPasswordRequest sets a new password for the account the token was issued for
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangePasswordRequest changes the caller's own password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// UserResponse represents account information without the password hash
type UserResponse struct {
	ID          int64  `json:"id" example:"1"`
	Email       string `json:"email" example:"coach@university.ru"`
	FullName    string `json:"fullName" example:"Иванов Иван"`
	IsActive    bool   `json:"isActive" example:"true"`
	IsSuperuser bool   `json:"isSuperuser" example:"false"`
}

// NewUserResponse converts a user model
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
	}
}

// NewUserResponses converts a list of user models
func NewUserResponses(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// CreateUserRequest is used by superusers to create accounts
type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FullName    string `json:"fullName"`
	IsActive    *bool  `json:"isActive"`
	IsSuperuser bool   `json:"isSuperuser"`
}

// RegisterRequest is the open self-registration payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName"`
}

// UpdateUserRequest is a partial account update. Absent fields are left unchanged.
type UpdateUserRequest struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	Password    *string `json:"password" binding:"omitempty,min=8"`
	FullName    *string `json:"fullName"`
	IsActive    *bool   `json:"isActive"`
	IsSuperuser *bool   `json:"isSuperuser"`
}

// UpdateMeRequest changes the caller's own email or name
type UpdateMeRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"fullName"`
}
