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
	"github.com/yigit/gtostat/internal/pkg/logger"
)

// AchievementRepository handles the gto table
type AchievementRepository struct {
	db DB
	sb squirrel.StatementBuilderType
}

// NewAchievementRepository creates a new AchievementRepository
func NewAchievementRepository(db DB) *AchievementRepository {
	return &AchievementRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Upsert records the level of a student for a.Year, replacing any existing record of that year
func (r *AchievementRepository) Upsert(ctx context.Context, a *models.Achievement) error {
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now()
	}

	sql, args, err := r.sb.Insert("gto").
		Columns("student_id", "year", "level", "updated_at").
		Values(a.StudentID, a.Year, string(a.Level), a.UpdatedAt).
		Suffix("ON CONFLICT (student_id, year) DO UPDATE SET level = EXCLUDED.level, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert achievement SQL")
		return fmt.Errorf("failed to build upsert achievement query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).
			Int64("studentID", a.StudentID).
			Int("year", a.Year).
			Msg("Error executing upsert achievement query")
		return fmt.Errorf("error upserting achievement: %w", err)
	}

	return nil
}

// Update changes the level of an existing record. A missing record yields ErrAchievementNotFound.
func (r *AchievementRepository) Update(ctx context.Context, a *models.Achievement) error {
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now()
	}

	sql, args, err := r.sb.Update("gto").
		Set("level", string(a.Level)).
		Set("updated_at", a.UpdatedAt).
		Where(squirrel.Eq{"student_id": a.StudentID, "year": a.Year}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update achievement SQL")
		return fmt.Errorf("failed to build update achievement query: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", a.StudentID).Msg("Error executing update achievement query")
		return fmt.Errorf("error updating achievement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrAchievementNotFound
	}

	return nil
}

// Find returns the record of a student for a year; found is false when there is none
func (r *AchievementRepository) Find(ctx context.Context, studentID int64, year int) (*models.Achievement, bool, error) {
	sql, args, err := r.sb.Select("student_id", "year", "level", "updated_at").
		From("gto").
		Where(squirrel.Eq{"student_id": studentID, "year": year}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building find achievement SQL")
		return nil, false, fmt.Errorf("failed to build find achievement query: %w", err)
	}

	a := &models.Achievement{}
	var level string
	err = r.db.QueryRow(ctx, sql, args...).Scan(&a.StudentID, &a.Year, &level, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error scanning achievement row")
		return nil, false, fmt.Errorf("error finding achievement: %w", err)
	}
	a.Level = models.Level(level)

	return a, true, nil
}

// ListByYear returns the records of a year. A nil studentIDs means every student;
// an empty non-nil slice returns nothing without querying.
func (r *AchievementRepository) ListByYear(ctx context.Context, year int, studentIDs []int64) ([]*models.Achievement, error) {
	if studentIDs != nil && len(studentIDs) == 0 {
		return []*models.Achievement{}, nil
	}

	where := squirrel.Eq{"year": year}
	if studentIDs != nil {
		where["student_id"] = studentIDs
	}

	sql, args, err := r.sb.Select("student_id", "year", "level", "updated_at").
		From("gto").
		Where(where).
		OrderBy("student_id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list achievements SQL")
		return nil, fmt.Errorf("failed to build list achievements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Error executing list achievements query")
		return nil, fmt.Errorf("error querying achievements: %w", err)
	}
	defer rows.Close()

	achievements := []*models.Achievement{}
	for rows.Next() {
		a := &models.Achievement{}
		var level string
		if err := rows.Scan(&a.StudentID, &a.Year, &level, &a.UpdatedAt); err != nil {
			logger.Error().Err(err).Msg("Error scanning achievement row during list")
			return nil, fmt.Errorf("error scanning achievement row: %w", err)
		}
		a.Level = models.Level(level)
		achievements = append(achievements, a)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating achievement rows")
		return nil, fmt.Errorf("error iterating achievement rows: %w", err)
	}

	return achievements, nil
}

// Delete removes a student's record for a year
func (r *AchievementRepository) Delete(ctx context.Context, studentID int64, year int) error {
	sql, args, err := r.sb.Delete("gto").
		Where(squirrel.Eq{"student_id": studentID, "year": year}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete achievement SQL")
		return fmt.Errorf("failed to build delete achievement query: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing delete achievement query")
		return fmt.Errorf("error deleting achievement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrAchievementNotFound
	}

	return nil
}
