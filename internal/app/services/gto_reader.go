package services

import (
	"context"
	"fmt"

	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

// DefaultMaxCourse is the highest course number counted for an institute
const DefaultMaxCourse = 6

// Scope selects the students of a tally. Exactly one field must be set.
type Scope struct {
	InstituteID int64
	GroupID     int64
	StudentID   int64
}

func (s Scope) keys() int {
	n := 0
	for _, id := range []int64{s.InstituteID, s.GroupID, s.StudentID} {
		if id != 0 {
			n++
		}
	}
	return n
}

// GTOReader tallies current-year achievement levels within a scope
type GTOReader interface {
	TallyInstitute(ctx context.Context, instituteID int64) (models.Tally, error)
	TallyGroup(ctx context.Context, groupID int64) (models.Tally, error)
	TallyStudent(ctx context.Context, studentID int64) (models.Tally, error)
	TallyAll(ctx context.Context) (models.Tally, error)
	Tally(ctx context.Context, scope Scope) (models.Tally, error)
	CurrentYear() int
}

// GTOReaderConfig holds the stores and settings of the reader
type GTOReaderConfig struct {
	Institutes   InstituteStore
	Groups       GroupStore
	Students     StudentStore
	Achievements AchievementStore
	MaxCourse    int
	Clock        Clock
}

type gtoReaderImpl struct {
	resolver     scopeResolver
	students     StudentStore
	achievements AchievementStore
	clock        Clock
}

// NewGTOReader creates a new GTO reader
func NewGTOReader(cfg GTOReaderConfig) GTOReader {
	if cfg.MaxCourse <= 0 {
		cfg.MaxCourse = DefaultMaxCourse
	}
	return &gtoReaderImpl{
		resolver: scopeResolver{
			institutes: cfg.Institutes,
			groups:     cfg.Groups,
			students:   cfg.Students,
			maxCourse:  cfg.MaxCourse,
		},
		students:     cfg.Students,
		achievements: cfg.Achievements,
		clock:        cfg.Clock,
	}
}

func (r *gtoReaderImpl) CurrentYear() int {
	return r.clock.year()
}

// TallyOf counts the levels of the given records
func TallyOf(records []*models.Achievement) models.Tally {
	var t models.Tally
	for _, rec := range records {
		t = t.Add(rec.Level)
	}
	return t
}

// tallyStudents counts the current-year records of the given students
func (r *gtoReaderImpl) tallyStudents(ctx context.Context, studentIDs []int64) (models.Tally, error) {
	records, err := r.achievements.ListByYear(ctx, r.CurrentYear(), studentIDs)
	if err != nil {
		return models.Tally{}, fmt.Errorf("error listing achievements: %w", err)
	}
	return TallyOf(records), nil
}

// TallyInstitute counts students of the institute's groups with course 1..MaxCourse
func (r *gtoReaderImpl) TallyInstitute(ctx context.Context, instituteID int64) (models.Tally, error) {
	return r.tallyScope(ctx, Scope{InstituteID: instituteID})
}

// TallyGroup counts the students of one group
func (r *gtoReaderImpl) TallyGroup(ctx context.Context, groupID int64) (models.Tally, error) {
	return r.tallyScope(ctx, Scope{GroupID: groupID})
}

func (r *gtoReaderImpl) tallyScope(ctx context.Context, scope Scope) (models.Tally, error) {
	studentIDs, err := r.resolver.studentIDs(ctx, scope)
	if err != nil {
		return models.Tally{}, err
	}
	if len(studentIDs) == 0 {
		return models.Tally{}, nil
	}
	return r.tallyStudents(ctx, studentIDs)
}

// TallyStudent counts a single student's current-year record
func (r *gtoReaderImpl) TallyStudent(ctx context.Context, studentID int64) (models.Tally, error) {
	if _, err := r.students.GetByID(ctx, studentID); err != nil {
		return models.Tally{}, err
	}

	rec, found, err := r.achievements.Find(ctx, studentID, r.CurrentYear())
	if err != nil {
		return models.Tally{}, fmt.Errorf("error finding achievement of student %d: %w", studentID, err)
	}
	if !found {
		return models.Tally{}, nil
	}
	return models.Tally{}.Add(rec.Level), nil
}

// TallyAll counts every current-year record
func (r *gtoReaderImpl) TallyAll(ctx context.Context) (models.Tally, error) {
	return r.tallyStudents(ctx, nil)
}

// Tally dispatches on the single key set in scope
func (r *gtoReaderImpl) Tally(ctx context.Context, scope Scope) (models.Tally, error) {
	if scope.keys() != 1 {
		return models.Tally{}, apperrors.ErrInvalidScope
	}

	switch {
	case scope.InstituteID != 0:
		return r.TallyInstitute(ctx, scope.InstituteID)
	case scope.GroupID != 0:
		return r.TallyGroup(ctx, scope.GroupID)
	default:
		return r.TallyStudent(ctx, scope.StudentID)
	}
}
