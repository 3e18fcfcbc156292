package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
	"github.com/yigit/gtostat/internal/pkg/auth"
)

// TokenStatus is the result of a successful verification
type TokenStatus struct {
	ID        string
	Email     string
	Active    bool
	ExpiresAt time.Time
}

// TokenService issues, verifies and deactivates access tokens
type TokenService interface {
	Issue(ctx context.Context, email string) (*auth.IssuedToken, error)
	// Verify checks signature and expiry, then the persisted active flag when revocation is tracked.
	// A deactivated token yields a status with Active false.
	Verify(ctx context.Context, token string) (*TokenStatus, error)
	// Deactivate fails with apperrors.ErrRevocationDisabled when tokens are not persisted
	Deactivate(ctx context.Context, token string) error
	// DeactivateAllForEmail is a no-op when tokens are not persisted
	DeactivateAllForEmail(ctx context.Context, email string) error
	// Revocable reports whether issued tokens can be deactivated before they expire
	Revocable() bool
}

type tokenServiceImpl struct {
	jwtService      *auth.JWTService
	tokenRepo       TokenStore
	trackRevocation bool
	logger          zerolog.Logger
}

// NewTokenService creates a token service. tokenRepo may be nil when trackRevocation is false.
func NewTokenService(jwtService *auth.JWTService, tokenRepo TokenStore, trackRevocation bool, logger zerolog.Logger) TokenService {
	return &tokenServiceImpl{
		jwtService:      jwtService,
		tokenRepo:       tokenRepo,
		trackRevocation: trackRevocation && tokenRepo != nil,
		logger:          logger,
	}
}

func (s *tokenServiceImpl) Issue(ctx context.Context, email string) (*auth.IssuedToken, error) {
	issued, err := s.jwtService.Generate(email)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if s.trackRevocation {
		err := s.tokenRepo.Create(ctx, &models.AccessToken{
			ID:        issued.ID,
			Email:     issued.Email,
			ExpiresAt: issued.ExpiresAt,
		})
		if err != nil {
			return nil, fmt.Errorf("token saving error: %w", err)
		}
	}

	return issued, nil
}

// parse validates the signed payload and maps failures onto the unauthorized sentinels
func (s *tokenServiceImpl) parse(token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}

func (s *tokenServiceImpl) Verify(ctx context.Context, token string) (*TokenStatus, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	status := &TokenStatus{
		ID:     claims.ID,
		Email:  claims.Email,
		Active: true,
	}
	if claims.ExpiresAt != nil {
		status.ExpiresAt = claims.ExpiresAt.Time
	}

	if !s.trackRevocation {
		return status, nil
	}

	stored, err := s.tokenRepo.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenNotFound) {
			return nil, apperrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("token lookup error: %w", err)
	}
	if stored.Email != claims.Email {
		return nil, apperrors.ErrTokenInvalid
	}
	status.Active = stored.IsActive

	return status, nil
}

func (s *tokenServiceImpl) Deactivate(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if !s.trackRevocation {
		s.logger.Warn().Str("email", claims.Email).Msg("Token deactivation requested but revocation tracking is disabled")
		return apperrors.ErrRevocationDisabled
	}

	if err := s.tokenRepo.Deactivate(ctx, claims.ID); err != nil {
		return err
	}
	s.logger.Info().Str("email", claims.Email).Str("tokenID", claims.ID).Msg("Token deactivated")
	return nil
}

func (s *tokenServiceImpl) Revocable() bool {
	return s.trackRevocation
}

func (s *tokenServiceImpl) DeactivateAllForEmail(ctx context.Context, email string) error {
	if !s.trackRevocation {
		return nil
	}

	n, err := s.tokenRepo.DeactivateAllForEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("error deactivating tokens: %w", err)
	}
	s.logger.Info().Str("email", email).Int64("count", n).Msg("Tokens deactivated")
	return nil
}
