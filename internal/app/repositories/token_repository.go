package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
	"github.com/yigit/gtostat/internal/pkg/dberrors"
	"github.com/yigit/gtostat/internal/pkg/logger"
)

// TokenRepository handles the access_tokens table
type TokenRepository struct {
	db DB
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db DB) *TokenRepository {
	return &TokenRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Create stores a freshly issued token as active
func (r *TokenRepository) Create(ctx context.Context, token *models.AccessToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	token.IsActive = true

	sql, args, err := r.sb.Insert("access_tokens").
		Columns("id", "email", "expires_at", "is_active", "created_at").
		Values(token.ID, token.Email, token.ExpiresAt, true, token.CreatedAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create token SQL")
		return fmt.Errorf("failed to build create token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "access_tokens_pkey") {
			logger.Warn().Str("tokenID", token.ID).Msg("Attempted to create duplicate token")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Str("email", token.Email).Msg("Error executing create token query")
		return fmt.Errorf("error creating token: %w", err)
	}

	return nil
}

// GetByID retrieves the stored state of a token by its jti
func (r *TokenRepository) GetByID(ctx context.Context, id string) (*models.AccessToken, error) {
	sql, args, err := r.sb.Select("id", "email", "expires_at", "is_active", "created_at").
		From("access_tokens").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get token SQL")
		return nil, fmt.Errorf("failed to build get token query: %w", err)
	}

	t := &models.AccessToken{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.Email, &t.ExpiresAt, &t.IsActive, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Str("tokenID", id).Msg("Error scanning token row")
		return nil, fmt.Errorf("error retrieving token: %w", err)
	}

	return t, nil
}

// Deactivate marks one token inactive
func (r *TokenRepository) Deactivate(ctx context.Context, id string) error {
	sql, args, err := r.sb.Update("access_tokens").
		Set("is_active", false).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building deactivate token SQL")
		return fmt.Errorf("failed to build deactivate token query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("tokenID", id).Msg("Error executing deactivate token query")
		return fmt.Errorf("error deactivating token: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}

	return nil
}

// DeactivateAllForEmail marks every active token of an account inactive and returns how many changed
func (r *TokenRepository) DeactivateAllForEmail(ctx context.Context, email string) (int64, error) {
	sql, args, err := r.sb.Update("access_tokens").
		Set("is_active", false).
		Where(squirrel.Eq{"email": email, "is_active": true}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Str("email", email).Msg("Error building deactivate all tokens SQL")
		return 0, fmt.Errorf("failed to build deactivate all tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		// An account without active tokens is fine
		logger.Error().Err(err).Str("email", email).Msg("Error executing deactivate all tokens query")
		return 0, fmt.Errorf("error deactivating tokens: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// CleanupExpired removes tokens that expired before now
func (r *TokenRepository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := r.sb.Delete("access_tokens").
		Where(squirrel.Lt{"expires_at": now}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building cleanup tokens SQL")
		return 0, fmt.Errorf("failed to build cleanup tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing cleanup tokens query")
		return 0, fmt.Errorf("error cleaning up tokens: %w", err)
	}

	deleted := cmdTag.RowsAffected()
	logger.Info().Int64("deletedCount", deleted).Msg("Cleaned up expired tokens")

	return deleted, nil
}
