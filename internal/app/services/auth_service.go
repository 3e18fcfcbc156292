package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
	"github.com/yigit/gtostat/internal/pkg/auth"
)

// AuthService handles login, logout and password reset on top of the token service
type AuthService struct {
	userRepo     UserStore
	tokenService TokenService
	bcryptCost   int
	logger       zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo UserStore, tokenService TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenService: tokenService,
		bcryptCost:   auth.BcryptCost,
		logger:       logger,
	}
}

// Login checks the credentials and issues a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*auth.IssuedToken, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	if !auth.CheckPassword(user.Password, password) {
		s.logger.Warn().Str("email", email).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	return s.tokenService.Issue(ctx, user.Email)
}

// Authenticate resolves a bearer token into the active user it was issued for
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	status, err := s.tokenService.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if !status.Active {
		return nil, apperrors.ErrTokenRevoked
	}

	user, err := s.userRepo.GetByEmail(ctx, status.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	return user, nil
}

// Logout deactivates the presented token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokenService.Deactivate(ctx, token)
}

// ResetPassword sets a new password for the account a still active token was issued for,
// then deactivates that token. It is refused up front when the token could not be deactivated.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if !s.tokenService.Revocable() {
		return apperrors.ErrRevocationDisabled
	}

	status, err := s.tokenService.Verify(ctx, token)
	if err != nil {
		return err
	}
	if !status.Active {
		return apperrors.ErrTokenRevoked
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, status.Email)
	if err != nil {
		return err
	}

	hash, err := auth.HashPasswordWithCost(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	if err := s.tokenService.Deactivate(ctx, token); err != nil {
		return err
	}

	s.logger.Info().Str("email", user.Email).Msg("Password reset")
	return nil
}
