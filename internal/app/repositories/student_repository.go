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

var studentColumns = []string{
	"id", "institute_id", "group_id", "course",
	"first_name", "last_name", "patronymic",
	"birth_date", "birth_place", "sex", "medical_group",
	"email", "phone_number", "address",
	"admission_year", "height", "weight",
}

// StudentFilter narrows a student listing. Zero values are ignored.
type StudentFilter struct {
	InstituteID int64
	GroupID     int64
	// GroupIDs restricts to students of any of the listed groups. A non-nil empty slice matches nothing.
	GroupIDs  []int64
	FirstName string
	LastName  string
	Page      Page
}

func (f StudentFilter) where() squirrel.And {
	conds := squirrel.And{}
	if f.InstituteID > 0 {
		conds = append(conds, squirrel.Eq{"institute_id": f.InstituteID})
	}
	if f.GroupID > 0 {
		conds = append(conds, squirrel.Eq{"group_id": f.GroupID})
	}
	if f.GroupIDs != nil {
		// squirrel renders an empty Eq slice as (1=0)
		conds = append(conds, squirrel.Eq{"group_id": f.GroupIDs})
	}
	if f.FirstName != "" {
		conds = append(conds, squirrel.Eq{"first_name": f.FirstName})
	}
	if f.LastName != "" {
		conds = append(conds, squirrel.Eq{"last_name": f.LastName})
	}
	return conds
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db DB
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db DB) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	s := &models.Student{}
	err := row.Scan(
		&s.ID, &s.InstituteID, &s.GroupID, &s.Course,
		&s.FirstName, &s.LastName, &s.Patronymic,
		&s.BirthDate, &s.BirthPlace, &s.Sex, &s.MedicalGroup,
		&s.Email, &s.PhoneNumber, &s.Address,
		&s.AdmissionYear, &s.Height, &s.Weight,
	)
	return s, err
}

func studentConflict(err error) error {
	if dberrors.IsDuplicateConstraintError(err, "students_email_key") ||
		dberrors.IsDuplicateConstraintError(err, "students_phone_number_key") {
		return apperrors.ErrStudentExists
	}
	return nil
}

// Create inserts a student and sets its ID. InstituteID and Course must already match the group.
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns(studentColumns[1:]...).
		Values(
			s.InstituteID, s.GroupID, s.Course,
			s.FirstName, s.LastName, s.Patronymic,
			s.BirthDate, s.BirthPlace, s.Sex, s.MedicalGroup,
			s.Email, s.PhoneNumber, s.Address,
			s.AdmissionYear, s.Height, s.Weight,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&s.ID); err != nil {
		if conflict := studentConflict(err); conflict != nil {
			return conflict
		}
		logger.Error().Err(err).Str("email", s.Email).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	return nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student by ID SQL")
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student by ID: %w", err)
	}

	return s, nil
}

// List returns the students matching the filter ordered by id
func (r *StudentRepository) List(ctx context.Context, filter StudentFilter) ([]*models.Student, error) {
	q := r.sb.Select(studentColumns...).
		From("students").
		Where(filter.where()).
		OrderBy("id ASC")

	sql, args, err := filter.Page.apply(q).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning student row during list")
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating student rows")
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, nil
}

// ListIDs returns only the ids of the students matching the filter
func (r *StudentRepository) ListIDs(ctx context.Context, filter StudentFilter) ([]int64, error) {
	q := r.sb.Select("id").
		From("students").
		Where(filter.where()).
		OrderBy("id ASC")

	sql, args, err := filter.Page.apply(q).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list student ids SQL")
		return nil, fmt.Errorf("failed to build list student ids query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list student ids query")
		return nil, fmt.Errorf("error querying student ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning student id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating student id rows")
		return nil, fmt.Errorf("error iterating student id rows: %w", err)
	}

	return ids, nil
}

// Count returns the number of students matching the filter, ignoring its page
func (r *StudentRepository) Count(ctx context.Context, filter StudentFilter) (int64, error) {
	return count(ctx, r.db, r.sb.Select("COUNT(*)").From("students").Where(filter.where()))
}

// Update overwrites every mutable column of a student
func (r *StudentRepository) Update(ctx context.Context, s *models.Student) error {
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"institute_id":   s.InstituteID,
			"group_id":       s.GroupID,
			"course":         s.Course,
			"first_name":     s.FirstName,
			"last_name":      s.LastName,
			"patronymic":     s.Patronymic,
			"birth_date":     s.BirthDate,
			"birth_place":    s.BirthPlace,
			"sex":            s.Sex,
			"medical_group":  s.MedicalGroup,
			"email":          s.Email,
			"phone_number":   s.PhoneNumber,
			"address":        s.Address,
			"admission_year": s.AdmissionYear,
			"height":         s.Height,
			"weight":         s.Weight,
		}).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update student SQL")
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if conflict := studentConflict(err); conflict != nil {
			return conflict
		}
		logger.Error().Err(err).Int64("studentID", s.ID).Msg("Error executing update student query")
		return fmt.Errorf("error updating student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// Delete removes a student
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("students").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete student SQL")
		return fmt.Errorf("failed to build delete student query: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing delete student query")
		return fmt.Errorf("error deleting student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}
