package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
	"github.com/yigit/gtostat/internal/pkg/logger"
)

// InstituteRepository handles institute database operations
type InstituteRepository struct {
	db DB
	sb squirrel.StatementBuilderType
}

// NewInstituteRepository creates a new InstituteRepository
func NewInstituteRepository(db DB) *InstituteRepository {
	return &InstituteRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Create inserts an institute and sets its ID
func (r *InstituteRepository) Create(ctx context.Context, institute *models.Institute) error {
	sql, args, err := r.sb.Insert("institutes").
		Columns("name").
		Values(institute.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create institute SQL")
		return fmt.Errorf("failed to build create institute query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&institute.ID); err != nil {
		logger.Error().Err(err).Str("name", institute.Name).Msg("Error executing create institute query")
		return fmt.Errorf("error creating institute: %w", err)
	}

	return nil
}

// GetByID retrieves an institute by ID
func (r *InstituteRepository) GetByID(ctx context.Context, id int64) (*models.Institute, error) {
	sql, args, err := r.sb.Select("id", "name").
		From("institutes").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get institute by ID SQL")
		return nil, fmt.Errorf("failed to build get institute query: %w", err)
	}

	institute := &models.Institute{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&institute.ID, &institute.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInstituteNotFound
		}
		logger.Error().Err(err).Int64("instituteID", id).Msg("Error scanning institute row")
		return nil, fmt.Errorf("error getting institute by ID: %w", err)
	}

	return institute, nil
}

// List returns institutes ordered by id
func (r *InstituteRepository) List(ctx context.Context, page Page) ([]*models.Institute, error) {
	q := r.sb.Select("id", "name").
		From("institutes").
		OrderBy("id ASC")

	sql, args, err := page.apply(q).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list institutes SQL")
		return nil, fmt.Errorf("failed to build list institutes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list institutes query")
		return nil, fmt.Errorf("error querying institutes: %w", err)
	}
	defer rows.Close()

	institutes := []*models.Institute{}
	for rows.Next() {
		institute := &models.Institute{}
		if err := rows.Scan(&institute.ID, &institute.Name); err != nil {
			logger.Error().Err(err).Msg("Error scanning institute row during list")
			return nil, fmt.Errorf("error scanning institute row: %w", err)
		}
		institutes = append(institutes, institute)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating institute rows")
		return nil, fmt.Errorf("error iterating institute rows: %w", err)
	}

	return institutes, nil
}

// Count returns the number of institutes
func (r *InstituteRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db, r.sb.Select("COUNT(*)").From("institutes"))
}

// count runs a prepared COUNT(*) select
func count(ctx context.Context, db DB, q squirrel.SelectBuilder) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count SQL")
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var n int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		logger.Error().Err(err).Str("sql", sql).Msg("Error executing count query")
		return 0, fmt.Errorf("error counting rows: %w", err)
	}
	return n, nil
}
