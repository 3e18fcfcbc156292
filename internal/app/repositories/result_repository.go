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

// ResultTables names the catalogue and result tables of one result kind
type ResultTables struct {
	Kind        models.ResultKind
	Definitions string
	Results     string
	// ForeignKey is the results column referencing Definitions.id
	ForeignKey string
}

var (
	StandardTables = ResultTables{
		Kind:        models.ResultKindStandard,
		Definitions: "standard",
		Results:     "standard_results",
		ForeignKey:  "standard_id",
	}
	TheoryTables = ResultTables{
		Kind:        models.ResultKindTheory,
		Definitions: "theory",
		Results:     "theory_results",
		ForeignKey:  "theory_id",
	}
)

// ResultRepository stores definitions and per-student results of one kind
type ResultRepository struct {
	db     DB
	sb     squirrel.StatementBuilderType
	tables ResultTables
}

// NewResultRepository creates a ResultRepository bound to the given tables
func NewResultRepository(db DB, tables ResultTables) *ResultRepository {
	return &ResultRepository{
		db:     db,
		sb:     statementBuilder(),
		tables: tables,
	}
}

// Kind returns the result kind this repository serves
func (r *ResultRepository) Kind() models.ResultKind {
	return r.tables.Kind
}

// ListDefinitions returns the catalogue ordered by id
func (r *ResultRepository) ListDefinitions(ctx context.Context) ([]*models.ResultDefinition, error) {
	sql, args, err := r.sb.Select("id", "name").
		From(r.tables.Definitions).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", r.tables.Definitions).Msg("Error building list definitions SQL")
		return nil, fmt.Errorf("failed to build list definitions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", r.tables.Definitions).Msg("Error executing list definitions query")
		return nil, fmt.Errorf("error querying definitions: %w", err)
	}
	defer rows.Close()

	defs := []*models.ResultDefinition{}
	for rows.Next() {
		d := &models.ResultDefinition{}
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("error scanning definition row: %w", err)
		}
		defs = append(defs, d)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating definition rows")
		return nil, fmt.Errorf("error iterating definition rows: %w", err)
	}

	return defs, nil
}

// CreateDefinition adds a catalogue entry and sets its ID
func (r *ResultRepository) CreateDefinition(ctx context.Context, def *models.ResultDefinition) error {
	sql, args, err := r.sb.Insert(r.tables.Definitions).
		Columns("name").
		Values(def.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create definition SQL")
		return fmt.Errorf("failed to build create definition query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&def.ID); err != nil {
		logger.Error().Err(err).Str("table", r.tables.Definitions).Msg("Error executing create definition query")
		return fmt.Errorf("error creating definition: %w", err)
	}

	return nil
}

// DefinitionExists reports whether a catalogue entry exists
func (r *ResultRepository) DefinitionExists(ctx context.Context, id int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From(r.tables.Definitions).
		Where(squirrel.Eq{"id": id}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build definition exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Int64("definitionID", id).Msg("Error executing definition exists query")
		return false, fmt.Errorf("error checking definition: %w", err)
	}

	return exists, nil
}

func (r *ResultRepository) resultColumns() []string {
	return []string{"id", "student_id", r.tables.ForeignKey, "semester", "result"}
}

func (r *ResultRepository) scanResult(row pgx.Row) (*models.ResultRecord, error) {
	rec := &models.ResultRecord{Kind: r.tables.Kind}
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.DefinitionID, &rec.Semester, &rec.Value)
	return rec, err
}

// ListByStudents returns the results of the given students. A nil slice means every student.
func (r *ResultRepository) ListByStudents(ctx context.Context, studentIDs []int64) ([]*models.ResultRecord, error) {
	if studentIDs != nil && len(studentIDs) == 0 {
		return []*models.ResultRecord{}, nil
	}

	q := r.sb.Select(r.resultColumns()...).
		From(r.tables.Results).
		OrderBy("student_id ASC", "id ASC")
	if studentIDs != nil {
		q = q.Where(squirrel.Eq{"student_id": studentIDs})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list results SQL")
		return nil, fmt.Errorf("failed to build list results query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", r.tables.Results).Msg("Error executing list results query")
		return nil, fmt.Errorf("error querying results: %w", err)
	}
	defer rows.Close()

	records := []*models.ResultRecord{}
	for rows.Next() {
		rec, err := r.scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning result row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating result rows")
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}

	return records, nil
}

// GetResult retrieves one result by ID
func (r *ResultRepository) GetResult(ctx context.Context, id int64) (*models.ResultRecord, error) {
	sql, args, err := r.sb.Select(r.resultColumns()...).
		From(r.tables.Results).
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get result query: %w", err)
	}

	rec, err := r.scanResult(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResultNotFound
		}
		logger.Error().Err(err).Int64("resultID", id).Msg("Error scanning result row")
		return nil, fmt.Errorf("error getting result: %w", err)
	}

	return rec, nil
}

// CreateResult inserts a result and sets its ID
func (r *ResultRepository) CreateResult(ctx context.Context, rec *models.ResultRecord) error {
	sql, args, err := r.sb.Insert(r.tables.Results).
		Columns("student_id", r.tables.ForeignKey, "semester", "result").
		Values(rec.StudentID, rec.DefinitionID, rec.Semester, rec.Value).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create result SQL")
		return fmt.Errorf("failed to build create result query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&rec.ID); err != nil {
		logger.Error().Err(err).Int64("studentID", rec.StudentID).Msg("Error executing create result query")
		return fmt.Errorf("error creating result: %w", err)
	}
	rec.Kind = r.tables.Kind

	return nil
}

// UpdateResult overwrites definition, semester and value of a result
func (r *ResultRepository) UpdateResult(ctx context.Context, rec *models.ResultRecord) error {
	sql, args, err := r.sb.Update(r.tables.Results).
		Set(r.tables.ForeignKey, rec.DefinitionID).
		Set("semester", rec.Semester).
		Set("result", rec.Value).
		Where(squirrel.Eq{"id": rec.ID, "student_id": rec.StudentID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update result SQL")
		return fmt.Errorf("failed to build update result query: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("resultID", rec.ID).Msg("Error executing update result query")
		return fmt.Errorf("error updating result: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrResultNotFound
	}

	return nil
}

// DeleteResult removes a result of a student
func (r *ResultRepository) DeleteResult(ctx context.Context, studentID, id int64) error {
	sql, args, err := r.sb.Delete(r.tables.Results).
		Where(squirrel.Eq{"id": id, "student_id": studentID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete result SQL")
		return fmt.Errorf("failed to build delete result query: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("resultID", id).Msg("Error executing delete result query")
		return fmt.Errorf("error deleting result: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrResultNotFound
	}

	return nil
}
