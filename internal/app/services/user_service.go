package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
	"github.com/yigit/gtostat/internal/pkg/auth"
	"github.com/yigit/gtostat/internal/pkg/validation"
)

// UserCreate carries the fields of a new account
type UserCreate struct {
	Email       string
	Password    string
	FullName    string
	IsActive    bool
	IsSuperuser bool
}

// UserPatch carries a partial account update. Nil fields are left unchanged.
type UserPatch struct {
	Email       *string
	FullName    *string
	Password    *string
	IsActive    *bool
	IsSuperuser *bool
}

// UserService defines the interface for user-related operations
type UserService interface {
	CreateUser(ctx context.Context, req UserCreate) (*models.User, error)
	// RegisterOpen creates an active regular account from self-registration
	RegisterOpen(ctx context.Context, email, password, fullName string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, params ListParams) ([]*models.User, int64, error)
	UpdateUser(ctx context.Context, id int64, patch UserPatch) (*models.User, error)
	// UpdateMe changes email and full name of the caller's own account
	UpdateMe(ctx context.Context, email string, patch UserPatch) (*models.User, error)
	// ChangePassword checks the current password, stores the new one and deactivates every token of the account
	ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error
	DeleteUser(ctx context.Context, id int64) error
}

type userServiceImpl struct {
	userRepo     UserStore
	tokenService TokenService
	bcryptCost   int
	logger       zerolog.Logger
}

// NewUserService creates a new user service instance
func NewUserService(userRepo UserStore, tokenService TokenService, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo:     userRepo,
		tokenService: tokenService,
		bcryptCost:   auth.BcryptCost,
		logger:       logger,
	}
}

// validateEmail validates an email address
func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email cannot be empty", apperrors.ErrValidationFailed)
	}
	if !validation.IsEmail(email) {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidEmail, email)
	}
	return nil
}

// validatePassword checks if password meets requirements
func validatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password cannot be empty", apperrors.ErrValidationFailed)
	}

	if len(password) < validation.PasswordMinLength {
		return fmt.Errorf("%w: password must be at least %d characters long", apperrors.ErrInvalidPassword, validation.PasswordMinLength)
	}

	hasLetter, hasDigit := false, false
	for _, char := range password {
		if unicode.IsLetter(char) {
			hasLetter = true
		}
		if unicode.IsDigit(char) {
			hasDigit = true
		}
	}
	if !hasLetter {
		return fmt.Errorf("%w: password must contain at least one letter", apperrors.ErrInvalidPassword)
	}
	if !hasDigit {
		return fmt.Errorf("%w: password must contain at least one digit", apperrors.ErrInvalidPassword)
	}

	return nil
}

func (s *userServiceImpl) hash(password string) (string, error) {
	hash, err := auth.HashPasswordWithCost(password, s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return hash, nil
}

func (s *userServiceImpl) CreateUser(ctx context.Context, req UserCreate) (*models.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:       req.Email,
		Password:    hash,
		FullName:    strings.TrimSpace(req.FullName),
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("User created")
	return user, nil
}

func (s *userServiceImpl) RegisterOpen(ctx context.Context, email, password, fullName string) (*models.User, error) {
	return s.CreateUser(ctx, UserCreate{
		Email:    email,
		Password: password,
		FullName: fullName,
		IsActive: true,
	})
}

func (s *userServiceImpl) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: user ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.userRepo.GetByID(ctx, id)
}

func (s *userServiceImpl) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userRepo.GetByEmail(ctx, email)
}

func (s *userServiceImpl) ListUsers(ctx context.Context, params ListParams) ([]*models.User, int64, error) {
	users, err := s.userRepo.List(ctx, params.page())
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving users: %w", err)
	}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	return users, total, nil
}

// apply writes the patch to user and persists it, including a new password when given
func (s *userServiceImpl) apply(ctx context.Context, user *models.User, patch UserPatch) (*models.User, error) {
	oldEmail := user.Email

	var newHash string
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := s.hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		newHash = hash
	}

	if patch.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*patch.Email))
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if patch.FullName != nil {
		user.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.IsSuperuser != nil {
		user.IsSuperuser = *patch.IsSuperuser
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if newHash != "" {
		if err := s.userRepo.UpdatePassword(ctx, user.ID, newHash); err != nil {
			return nil, err
		}
		user.Password = newHash
	}

	// Tokens carry the email; a changed address or a deactivated account invalidates them
	if user.Email != oldEmail || !user.IsActive || patch.Password != nil {
		if err := s.tokenService.DeactivateAllForEmail(ctx, oldEmail); err != nil {
			return nil, err
		}
	}

	return user, nil
}

func (s *userServiceImpl) UpdateUser(ctx context.Context, id int64, patch UserPatch) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, patch)
}

func (s *userServiceImpl) UpdateMe(ctx context.Context, email string, patch UserPatch) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, UserPatch{Email: patch.Email, FullName: patch.FullName})
}

func (s *userServiceImpl) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, currentPassword) {
		return apperrors.ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	return s.tokenService.DeactivateAllForEmail(ctx, user.Email)
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	return s.tokenService.DeactivateAllForEmail(ctx, user.Email)
}
