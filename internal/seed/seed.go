package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/services"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

// AdminAccount describes the superuser created on first start
type AdminAccount struct {
	Email    string
	Password string
	FullName string
}

// Users is the part of the user service the seeder needs
type Users interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, req services.UserCreate) (*models.User, error)
}

// CreateDefaultData creates the initial superuser when it does not exist yet.
// An empty admin email disables seeding.
func CreateDefaultData(ctx context.Context, users Users, admin AdminAccount, lgr zerolog.Logger) error {
	if admin.Email == "" {
		lgr.Info().Msg("No admin account configured, skipping default data")
		return nil
	}

	existing, err := users.GetUserByEmail(ctx, admin.Email)
	if err == nil {
		lgr.Debug().Int64("userID", existing.ID).Msg("Admin account already exists")
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}

	user, err := users.CreateUser(ctx, services.UserCreate{
		Email:       admin.Email,
		Password:    admin.Password,
		FullName:    admin.FullName,
		IsActive:    true,
		IsSuperuser: true,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	lgr.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("Admin account created")
	return nil
}
