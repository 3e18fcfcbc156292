package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/repositories"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
	"golang.org/x/sync/errgroup"
)

// RatingEngine computes the current-year tally of every institute
type RatingEngine interface {
	// Standings returns one entry per institute in ascending institute id order
	Standings(ctx context.Context) ([]models.InstituteTally, error)
	// Invalidate drops cached standings of the current year
	Invalidate(ctx context.Context)
}

// RatingEngineConfig holds the stores and settings of the engine
type RatingEngineConfig struct {
	Institutes   InstituteStore
	Groups       GroupStore
	Students     StudentStore
	Achievements AchievementStore
	Cache        StandingsCache
	MaxCourse    int
	Clock        Clock
	Logger       zerolog.Logger
}

type ratingEngineImpl struct {
	institutes   InstituteStore
	groups       GroupStore
	students     StudentStore
	achievements AchievementStore
	cache        StandingsCache
	maxCourse    int
	clock        Clock
	logger       zerolog.Logger
}

// NewRatingEngine creates a rating engine. Cache may be nil.
func NewRatingEngine(cfg RatingEngineConfig) RatingEngine {
	if cfg.MaxCourse <= 0 {
		cfg.MaxCourse = DefaultMaxCourse
	}
	return &ratingEngineImpl{
		institutes:   cfg.Institutes,
		groups:       cfg.Groups,
		students:     cfg.Students,
		achievements: cfg.Achievements,
		cache:        cfg.Cache,
		maxCourse:    cfg.MaxCourse,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
	}
}

func (e *ratingEngineImpl) Standings(ctx context.Context) ([]models.InstituteTally, error) {
	year := e.clock.year()

	if e.cache != nil {
		cached, ok, err := e.cache.Get(ctx, year)
		if err != nil {
			e.logger.Warn().Err(err).Int("year", year).Msg("Standings cache read failed, recomputing")
		} else if ok {
			return cached, nil
		}
	}

	standings, err := e.compute(ctx, year)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, year, standings); err != nil {
			e.logger.Warn().Err(err).Int("year", year).Msg("Standings cache write failed")
		}
	}

	return standings, nil
}

func (e *ratingEngineImpl) Invalidate(ctx context.Context) {
	if e.cache == nil {
		return
	}
	year := e.clock.year()
	if err := e.cache.Invalidate(ctx, year); err != nil {
		e.logger.Warn().Err(err).Int("year", year).Msg("Standings cache invalidation failed")
	}
}

// compute loads the four tables concurrently and buckets records by institute
func (e *ratingEngineImpl) compute(ctx context.Context, year int) ([]models.InstituteTally, error) {
	var (
		institutes   []*models.Institute
		groups       []*models.Group
		students     []*models.Student
		achievements []*models.Achievement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		institutes, err = e.institutes.List(gctx, repositories.Page{})
		return err
	})
	g.Go(func() (err error) {
		groups, err = e.groups.List(gctx, repositories.GroupFilter{MinCourse: 1, MaxCourse: e.maxCourse})
		return err
	})
	g.Go(func() (err error) {
		students, err = e.students.List(gctx, repositories.StudentFilter{})
		return err
	})
	g.Go(func() (err error) {
		achievements, err = e.achievements.ListByYear(gctx, year, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error loading standings data: %w", err)
	}

	if len(institutes) == 0 {
		return nil, apperrors.NewResourceNotFoundError("no institutes to rank")
	}

	return BucketStandings(institutes, groups, students, achievements), nil
}

// BucketStandings tallies records per institute. A student counts for the institute of its group
// when that group is among groups; records of other students are ignored.
func BucketStandings(
	institutes []*models.Institute,
	groups []*models.Group,
	students []*models.Student,
	achievements []*models.Achievement,
) []models.InstituteTally {
	groupInstitute := make(map[int64]int64, len(groups))
	for _, g := range groups {
		groupInstitute[g.ID] = g.InstituteID
	}

	studentInstitute := make(map[int64]int64, len(students))
	for _, s := range students {
		if instID, ok := groupInstitute[s.GroupID]; ok {
			studentInstitute[s.ID] = instID
		}
	}

	tallies := make(map[int64]models.Tally, len(institutes))
	for _, a := range achievements {
		instID, ok := studentInstitute[a.StudentID]
		if !ok {
			continue
		}
		tallies[instID] = tallies[instID].Add(a.Level)
	}

	standings := make([]models.InstituteTally, 0, len(institutes))
	for _, inst := range institutes {
		standings = append(standings, models.InstituteTally{InstituteID: inst.ID, Tally: tallies[inst.ID]})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].InstituteID < standings[j].InstituteID
	})

	return standings
}

// RankInstitute returns the 1-based position of an institute per level. Standings are sorted
// descending by count with a stable sort, so ties keep ascending institute id order.
func RankInstitute(standings []models.InstituteTally, instituteID int64) (models.Rank, error) {
	if len(standings) == 0 {
		return models.Rank{}, apperrors.NewResourceNotFoundError("no institutes to rank")
	}

	found := false
	for _, s := range standings {
		if s.InstituteID == instituteID {
			found = true
			break
		}
	}
	if !found {
		return models.Rank{}, apperrors.ErrInstituteNotFound
	}

	return models.Rank{
		Gold:   rankByLevel(standings, instituteID, models.LevelGold),
		Silver: rankByLevel(standings, instituteID, models.LevelSilver),
		Bronze: rankByLevel(standings, instituteID, models.LevelBronze),
	}, nil
}

func rankByLevel(standings []models.InstituteTally, instituteID int64, level models.Level) int {
	sorted := make([]models.InstituteTally, len(standings))
	copy(sorted, standings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tally.Get(level) > sorted[j].Tally.Get(level)
	})

	for i, s := range sorted {
		if s.InstituteID == instituteID {
			return i + 1
		}
	}
	return 0
}
