package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
	"github.com/yigit/gtostat/internal/pkg/dberrors"
	"github.com/yigit/gtostat/internal/pkg/logger"
)

// GroupFilter narrows a group listing. Zero values are ignored.
type GroupFilter struct {
	InstituteID int64
	Course      int
	// MinCourse and MaxCourse bound the course range when Course is not set
	MinCourse int
	MaxCourse int
	Page      Page
}

func (f GroupFilter) where() squirrel.And {
	conds := squirrel.And{}
	if f.InstituteID > 0 {
		conds = append(conds, squirrel.Eq{"institute_id": f.InstituteID})
	}
	if f.Course > 0 {
		conds = append(conds, squirrel.Eq{"course": f.Course})
	} else {
		if f.MinCourse > 0 {
			conds = append(conds, squirrel.GtOrEq{"course": f.MinCourse})
		}
		if f.MaxCourse > 0 {
			conds = append(conds, squirrel.LtOrEq{"course": f.MaxCourse})
		}
	}
	return conds
}

// GroupRepository handles group database operations
type GroupRepository struct {
	db DB
	sb squirrel.StatementBuilderType
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db DB) *GroupRepository {
	return &GroupRepository{
		db: db,
		sb: statementBuilder(),
	}
}

// Create inserts a group and sets its ID
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	sql, args, err := r.sb.Insert("groups").
		Columns("institute_id", "course", "name").
		Values(group.InstituteID, group.Course, group.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create group SQL")
		return fmt.Errorf("failed to build create group query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&group.ID); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "groups_name_key") {
			return apperrors.ErrGroupNameExists
		}
		logger.Error().Err(err).Str("name", group.Name).Msg("Error executing create group query")
		return fmt.Errorf("error creating group: %w", err)
	}

	return nil
}

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	sql, args, err := r.sb.Select("id", "institute_id", "course", "name").
		From("groups").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get group by ID SQL")
		return nil, fmt.Errorf("failed to build get group query: %w", err)
	}

	group := &models.Group{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&group.ID, &group.InstituteID, &group.Course, &group.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrGroupNotFound
		}
		logger.Error().Err(err).Int64("groupID", id).Msg("Error scanning group row")
		return nil, fmt.Errorf("error getting group by ID: %w", err)
	}

	return group, nil
}

// List returns the groups matching the filter ordered by id
func (r *GroupRepository) List(ctx context.Context, filter GroupFilter) ([]*models.Group, error) {
	q := r.sb.Select("id", "institute_id", "course", "name").
		From("groups").
		Where(filter.where()).
		OrderBy("id ASC")

	sql, args, err := filter.Page.apply(q).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list groups SQL")
		return nil, fmt.Errorf("failed to build list groups query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list groups query")
		return nil, fmt.Errorf("error querying groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.InstituteID, &group.Course, &group.Name); err != nil {
			logger.Error().Err(err).Msg("Error scanning group row during list")
			return nil, fmt.Errorf("error scanning group row: %w", err)
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating group rows")
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}

	return groups, nil
}

// Count returns the number of groups matching the filter, ignoring its page
func (r *GroupRepository) Count(ctx context.Context, filter GroupFilter) (int64, error) {
	return count(ctx, r.db, r.sb.Select("COUNT(*)").From("groups").Where(filter.where()))
}
