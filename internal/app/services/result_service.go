package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

// ResultSource reads one kind of per-student results over a scope
type ResultSource interface {
	Kind() models.ResultKind
	Definitions(ctx context.Context) ([]*models.ResultDefinition, error)
	Results(ctx context.Context, scope Scope) ([]*models.ResultRecord, error)
}

// gtoSource exposes current-year achievements as results. Its catalogue is the three levels.
type gtoSource struct {
	resolver     scopeResolver
	achievements AchievementStore
	clock        Clock
}

func (s *gtoSource) Kind() models.ResultKind {
	return models.ResultKindGTO
}

func (s *gtoSource) Definitions(_ context.Context) ([]*models.ResultDefinition, error) {
	defs := make([]*models.ResultDefinition, 0, len(models.Levels))
	for i, level := range models.Levels {
		defs = append(defs, &models.ResultDefinition{ID: int64(i + 1), Name: string(level)})
	}
	return defs, nil
}

func (s *gtoSource) Results(ctx context.Context, scope Scope) ([]*models.ResultRecord, error) {
	studentIDs, err := s.resolver.studentIDs(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(studentIDs) == 0 {
		return []*models.ResultRecord{}, nil
	}

	achievements, err := s.achievements.ListByYear(ctx, s.clock.year(), studentIDs)
	if err != nil {
		return nil, fmt.Errorf("error listing achievements: %w", err)
	}

	records := make([]*models.ResultRecord, 0, len(achievements))
	for _, a := range achievements {
		records = append(records, &models.ResultRecord{
			Kind:      models.ResultKindGTO,
			StudentID: a.StudentID,
			Label:     string(a.Level),
			Year:      a.Year,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StudentID < records[j].StudentID
	})
	return records, nil
}

// tableSource reads standards or theory results from their tables
type tableSource struct {
	resolver scopeResolver
	store    ResultStore
}

func (s *tableSource) Kind() models.ResultKind {
	return s.store.Kind()
}

func (s *tableSource) Definitions(ctx context.Context) ([]*models.ResultDefinition, error) {
	defs, err := s.store.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing %s definitions: %w", s.store.Kind(), err)
	}
	return defs, nil
}

func (s *tableSource) Results(ctx context.Context, scope Scope) ([]*models.ResultRecord, error) {
	studentIDs, err := s.resolver.studentIDs(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(studentIDs) == 0 {
		return []*models.ResultRecord{}, nil
	}

	records, err := s.store.ListByStudents(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("error listing %s results: %w", s.store.Kind(), err)
	}
	return records, nil
}

// ResultServiceConfig holds the stores of the result service. Stores lists the table-backed kinds to serve.
type ResultServiceConfig struct {
	Institutes   InstituteStore
	Groups       GroupStore
	Students     StudentStore
	Achievements AchievementStore
	Stores       []ResultStore
	MaxCourse    int
	Clock        Clock
	Logger       zerolog.Logger
}

// ResultService gives uniform read access to every result kind and write access to table-backed kinds
type ResultService interface {
	Kinds() []models.ResultKind
	Source(kind models.ResultKind) (ResultSource, error)
	ListDefinitions(ctx context.Context, kind models.ResultKind) ([]*models.ResultDefinition, error)
	CreateDefinition(ctx context.Context, kind models.ResultKind, name string) (*models.ResultDefinition, error)
	ListResults(ctx context.Context, kind models.ResultKind, scope Scope) ([]*models.ResultRecord, error)
	CreateResult(ctx context.Context, kind models.ResultKind, rec *models.ResultRecord) (*models.ResultRecord, error)
	UpdateResult(ctx context.Context, kind models.ResultKind, rec *models.ResultRecord) (*models.ResultRecord, error)
	DeleteResult(ctx context.Context, kind models.ResultKind, studentID, id int64) error
}

type resultServiceImpl struct {
	kinds    []models.ResultKind
	sources  map[models.ResultKind]ResultSource
	stores   map[models.ResultKind]ResultStore
	students StudentStore
	logger   zerolog.Logger
}

// NewResultService creates a result service serving gto plus every configured table-backed kind
func NewResultService(cfg ResultServiceConfig) ResultService {
	if cfg.MaxCourse <= 0 {
		cfg.MaxCourse = DefaultMaxCourse
	}
	resolver := scopeResolver{
		institutes: cfg.Institutes,
		groups:     cfg.Groups,
		students:   cfg.Students,
		maxCourse:  cfg.MaxCourse,
	}

	s := &resultServiceImpl{
		sources:  make(map[models.ResultKind]ResultSource),
		stores:   make(map[models.ResultKind]ResultStore),
		students: cfg.Students,
		logger:   cfg.Logger,
	}
	s.add(&gtoSource{resolver: resolver, achievements: cfg.Achievements, clock: cfg.Clock})
	for _, store := range cfg.Stores {
		s.stores[store.Kind()] = store
		s.add(&tableSource{resolver: resolver, store: store})
	}
	return s
}

func (s *resultServiceImpl) add(src ResultSource) {
	if _, ok := s.sources[src.Kind()]; !ok {
		s.kinds = append(s.kinds, src.Kind())
	}
	s.sources[src.Kind()] = src
}

func (s *resultServiceImpl) Kinds() []models.ResultKind {
	out := make([]models.ResultKind, len(s.kinds))
	copy(out, s.kinds)
	return out
}

func (s *resultServiceImpl) Source(kind models.ResultKind) (ResultSource, error) {
	src, ok := s.sources[kind]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("result kind %q", kind))
	}
	return src, nil
}

// writable returns the store of a table-backed kind. GTO records are written through the achievement service.
func (s *resultServiceImpl) writable(kind models.ResultKind) (ResultStore, error) {
	store, ok := s.stores[kind]
	if !ok {
		if kind == models.ResultKindGTO {
			return nil, apperrors.NewBadRequestError("gto results are recorded through the gto endpoints")
		}
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("result kind %q", kind))
	}
	return store, nil
}

func (s *resultServiceImpl) ListDefinitions(ctx context.Context, kind models.ResultKind) ([]*models.ResultDefinition, error) {
	src, err := s.Source(kind)
	if err != nil {
		return nil, err
	}
	return src.Definitions(ctx)
}

func (s *resultServiceImpl) CreateDefinition(ctx context.Context, kind models.ResultKind, name string) (*models.ResultDefinition, error) {
	store, err := s.writable(kind)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidationFailed)
	}

	def := &models.ResultDefinition{Name: name}
	if err := store.CreateDefinition(ctx, def); err != nil {
		return nil, err
	}
	s.logger.Info().Str("kind", string(kind)).Int64("definitionID", def.ID).Msg("Result definition created")
	return def, nil
}

func (s *resultServiceImpl) ListResults(ctx context.Context, kind models.ResultKind, scope Scope) ([]*models.ResultRecord, error) {
	src, err := s.Source(kind)
	if err != nil {
		return nil, err
	}
	return src.Results(ctx, scope)
}

// checkResult validates a record against the student and the kind's catalogue
func (s *resultServiceImpl) checkResult(ctx context.Context, store ResultStore, rec *models.ResultRecord) error {
	if rec.Semester <= 0 {
		return fmt.Errorf("%w: semester must be positive", apperrors.ErrValidationFailed)
	}
	if rec.Value < 0 {
		return fmt.Errorf("%w: result cannot be negative", apperrors.ErrValidationFailed)
	}
	if _, err := s.students.GetByID(ctx, rec.StudentID); err != nil {
		return err
	}

	exists, err := store.DefinitionExists(ctx, rec.DefinitionID)
	if err != nil {
		return fmt.Errorf("error checking definition: %w", err)
	}
	if !exists {
		return apperrors.ErrDefinitionNotFound
	}
	return nil
}

func (s *resultServiceImpl) CreateResult(ctx context.Context, kind models.ResultKind, rec *models.ResultRecord) (*models.ResultRecord, error) {
	store, err := s.writable(kind)
	if err != nil {
		return nil, err
	}
	if err := s.checkResult(ctx, store, rec); err != nil {
		return nil, err
	}

	if err := store.CreateResult(ctx, rec); err != nil {
		return nil, err
	}
	rec.Kind = kind
	return rec, nil
}

func (s *resultServiceImpl) UpdateResult(ctx context.Context, kind models.ResultKind, rec *models.ResultRecord) (*models.ResultRecord, error) {
	store, err := s.writable(kind)
	if err != nil {
		return nil, err
	}
	if err := s.checkResult(ctx, store, rec); err != nil {
		return nil, err
	}

	if err := store.UpdateResult(ctx, rec); err != nil {
		if errors.Is(err, apperrors.ErrResultNotFound) {
			return nil, apperrors.ErrResultNotFound
		}
		return nil, fmt.Errorf("error updating result: %w", err)
	}
	rec.Kind = kind
	return rec, nil
}

func (s *resultServiceImpl) DeleteResult(ctx context.Context, kind models.ResultKind, studentID, id int64) error {
	store, err := s.writable(kind)
	if err != nil {
		return err
	}
	return store.DeleteResult(ctx, studentID, id)
}
