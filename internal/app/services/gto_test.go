package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/repositories"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

const testYear = 2026

func fixedClock() Clock {
	return func() time.Time {
		return time.Date(testYear, time.October, 18, 12, 0, 0, 0, time.UTC)
	}
}

type gtoWorld struct {
	institutes   *fakeInstitutes
	groups       *fakeGroups
	students     *fakeStudents
	achievements *fakeAchievements
}

// newGTOWorld builds two ranked institutes and an empty third one:
//
//	institute 1: group 10 (course 2) with 3 gold, 1 silver and a student without a record;
//	             group 30 (course 7) with 1 gold that lies outside the counted courses
//	institute 2: group 20 (course 3) with 1 gold, 2 silver, 5 bronze
//	institute 3: no groups
func newGTOWorld() *gtoWorld {
	w := &gtoWorld{
		institutes: newFakeInstitutes(
			&models.Institute{ID: 1, Name: "Институт спорта"},
			&models.Institute{ID: 2, Name: "Институт экономики"},
			&models.Institute{ID: 3, Name: "Институт права"},
		),
		groups: newFakeGroups(
			&models.Group{ID: 10, InstituteID: 1, Course: 2, Name: "СП-21"},
			&models.Group{ID: 20, InstituteID: 2, Course: 3, Name: "ЭК-31"},
			&models.Group{ID: 30, InstituteID: 1, Course: 7, Name: "СП-71"},
		),
		students:     newFakeStudents(),
		achievements: newFakeAchievements(),
	}

	add := func(id, groupID, instituteID int64, level models.Level) {
		w.students.rows[id] = &models.Student{ID: id, GroupID: groupID, InstituteID: instituteID}
		if level != "" {
			w.achievements.rows[achievementKey{id, testYear}] = &models.Achievement{StudentID: id, Year: testYear, Level: level}
		}
	}

	add(1, 10, 1, models.LevelGold)
	add(2, 10, 1, models.LevelGold)
	add(3, 10, 1, models.LevelGold)
	add(4, 10, 1, models.LevelSilver)
	add(5, 30, 1, models.LevelGold)
	add(6, 10, 1, "")

	add(11, 20, 2, models.LevelGold)
	add(12, 20, 2, models.LevelSilver)
	add(13, 20, 2, models.LevelSilver)
	for id := int64(14); id <= 18; id++ {
		add(id, 20, 2, models.LevelBronze)
	}

	// previous year records never count
	w.achievements.rows[achievementKey{4, testYear - 1}] = &models.Achievement{StudentID: 4, Year: testYear - 1, Level: models.LevelGold}

	return w
}

func (w *gtoWorld) reader() GTOReader {
	return NewGTOReader(GTOReaderConfig{
		Institutes:   w.institutes,
		Groups:       w.groups,
		Students:     w.students,
		Achievements: w.achievements,
		Clock:        fixedClock(),
	})
}

func (w *gtoWorld) engine(cache StandingsCache) RatingEngine {
	return NewRatingEngine(RatingEngineConfig{
		Institutes:   w.institutes,
		Groups:       w.groups,
		Students:     w.students,
		Achievements: w.achievements,
		Cache:        cache,
		Clock:        fixedClock(),
		Logger:       zerolog.Nop(),
	})
}

func TestGTOReader_TallyInstitute(t *testing.T) {
	w := newGTOWorld()
	r := w.reader()
	ctx := context.Background()

	a, err := r.TallyInstitute(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Tally{Gold: 3, Silver: 1, Bronze: 0}, a)

	b, err := r.TallyInstitute(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, models.Tally{Gold: 1, Silver: 2, Bronze: 5}, b)

	empty, err := r.TallyInstitute(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.Tally{}, empty)

	_, err = r.TallyInstitute(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrInstituteNotFound)
}

func TestGTOReader_TallyNeverExceedsStudents(t *testing.T) {
	w := newGTOWorld()
	r := w.reader()
	ctx := context.Background()

	institutes, err := w.institutes.List(ctx, repositories.Page{})
	require.NoError(t, err)
	require.NotEmpty(t, institutes)

	for _, inst := range institutes {
		tally, err := r.TallyInstitute(ctx, inst.ID)
		require.NoError(t, err)

		students, err := w.students.Count(ctx, repositories.StudentFilter{InstituteID: inst.ID})
		require.NoError(t, err)

		assert.LessOrEqual(t, int64(tally.Total()), students, "institute %d", inst.ID)
	}
}

func TestGTOReader_TallyGroupAndStudent(t *testing.T) {
	w := newGTOWorld()
	r := w.reader()
	ctx := context.Background()

	g, err := r.TallyGroup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, models.Tally{Gold: 1}, g)

	s, err := r.TallyStudent(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, models.Tally{Silver: 1}, s)

	none, err := r.TallyStudent(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, 0, none.Total())

	_, err = r.TallyStudent(ctx, 404)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = r.TallyGroup(ctx, 404)
	assert.ErrorIs(t, err, apperrors.ErrGroupNotFound)
}

func TestGTOReader_TallyAll(t *testing.T) {
	w := newGTOWorld()

	all, err := w.reader().TallyAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Tally{Gold: 5, Silver: 3, Bronze: 5}, all)
}

func TestGTOReader_TallyScope(t *testing.T) {
	w := newGTOWorld()
	r := w.reader()
	ctx := context.Background()

	got, err := r.Tally(ctx, Scope{GroupID: 20})
	require.NoError(t, err)
	assert.Equal(t, 8, got.Total())

	for _, scope := range []Scope{{}, {InstituteID: 1, GroupID: 10}, {InstituteID: 1, GroupID: 10, StudentID: 1}} {
		_, err := r.Tally(ctx, scope)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidScope), "scope %+v", scope)
		assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	}
}

func TestRatingEngine_Standings(t *testing.T) {
	w := newGTOWorld()

	standings, err := w.engine(nil).Standings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.InstituteTally{
		{InstituteID: 1, Tally: models.Tally{Gold: 3, Silver: 1}},
		{InstituteID: 2, Tally: models.Tally{Gold: 1, Silver: 2, Bronze: 5}},
		{InstituteID: 3},
	}, standings)

	rank, err := RankInstitute(standings, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Rank{Gold: 1, Silver: 2, Bronze: 2}, rank)

	rank, err = RankInstitute(standings, 3)
	require.NoError(t, err)
	assert.Equal(t, models.Rank{Gold: 3, Silver: 3, Bronze: 3}, rank)

	_, err = RankInstitute(standings, 42)
	assert.ErrorIs(t, err, apperrors.ErrInstituteNotFound)
}

func TestRatingEngine_NoInstitutes(t *testing.T) {
	w := newGTOWorld()
	w.institutes = newFakeInstitutes()

	_, err := w.engine(nil).Standings(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = RankInstitute(nil, 1)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestRankInstitute_TiesKeepIDOrder(t *testing.T) {
	standings := []models.InstituteTally{
		{InstituteID: 1, Tally: models.Tally{Gold: 2}},
		{InstituteID: 2, Tally: models.Tally{Gold: 2}},
		{InstituteID: 3, Tally: models.Tally{Gold: 5}},
	}

	r1, err := RankInstitute(standings, 1)
	require.NoError(t, err)
	r2, err := RankInstitute(standings, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, r1.Gold)
	assert.Equal(t, 3, r2.Gold)
	// input order is untouched
	assert.Equal(t, int64(1), standings[0].InstituteID)
}

func TestRatingEngine_Cache(t *testing.T) {
	w := newGTOWorld()
	cache := newFakeCache()
	engine := w.engine(cache)
	ctx := context.Background()

	first, err := engine.Standings(ctx)
	require.NoError(t, err)
	require.Contains(t, cache.entries, testYear)

	// new record is not visible until the cache is dropped
	w.achievements.rows[achievementKey{6, testYear}] = &models.Achievement{StudentID: 6, Year: testYear, Level: models.LevelBronze}

	cached, err := engine.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	engine.Invalidate(ctx)
	fresh, err := engine.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh[0].Tally.Bronze)
	assert.Equal(t, 1, cache.invalidated)
}

func TestBucketStandings_IgnoresUnknownStudents(t *testing.T) {
	standings := BucketStandings(
		[]*models.Institute{{ID: 2}, {ID: 1}},
		[]*models.Group{{ID: 10, InstituteID: 1}},
		[]*models.Student{{ID: 1, GroupID: 10}, {ID: 2, GroupID: 99}},
		[]*models.Achievement{
			{StudentID: 1, Level: models.LevelGold},
			{StudentID: 2, Level: models.LevelGold},
			{StudentID: 3, Level: models.LevelSilver},
		},
	)

	require.Len(t, standings, 2)
	assert.Equal(t, int64(1), standings[0].InstituteID)
	assert.Equal(t, models.Tally{Gold: 1}, standings[0].Tally)
	assert.Equal(t, models.Tally{}, standings[1].Tally)
}

func TestReportService_GetInstituteReport(t *testing.T) {
	w := newGTOWorld()
	svc := NewReportService(w.reader(), w.engine(nil))

	report, err := svc.GetInstituteReport(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.InstituteID)
	assert.Equal(t, testYear, report.Year)
	assert.Equal(t, models.Tally{Gold: 3, Silver: 1}, report.CountByInstitute)
	assert.Equal(t, models.Tally{Gold: 5, Silver: 3, Bronze: 5}, report.MembersCount)
	assert.Equal(t, models.Rank{Gold: 1, Silver: 2, Bronze: 2}, report.Rating)
	assert.InDelta(t, 75.0, report.PercentByCommon.Gold, 1e-9)
	assert.InDelta(t, 25.0, report.PercentByCommon.Silver, 1e-9)
	assert.InDelta(t, 0.0, report.PercentByCommon.Bronze, 1e-9)

	_, err = svc.GetInstituteReport(context.Background(), 77)
	assert.ErrorIs(t, err, apperrors.ErrInstituteNotFound)
}

func TestPercentByCommon_EmptyTally(t *testing.T) {
	assert.Equal(t, models.Percentages{}, PercentByCommon(models.Tally{}))
}

func TestAchievementService(t *testing.T) {
	w := newGTOWorld()
	cache := newFakeCache()
	engine := w.engine(cache)
	pub := &fakePublisher{}
	svc := NewAchievementService(w.achievements, w.students, engine, pub, fixedClock(), zerolog.Nop())
	ctx := context.Background()

	_, err := svc.RecordAchievement(ctx, 6, models.Level("platinum"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.RecordAchievement(ctx, 404, models.LevelGold)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	_, err = svc.UpdateAchievement(ctx, 6, models.LevelGold)
	assert.ErrorIs(t, err, apperrors.ErrAchievementNotFound)

	rec, err := svc.RecordAchievement(ctx, 6, models.LevelBronze)
	require.NoError(t, err)
	assert.Equal(t, testYear, rec.Year)
	assert.Equal(t, 1, cache.invalidated)

	// recording again replaces the current year's level
	_, err = svc.RecordAchievement(ctx, 6, models.LevelSilver)
	require.NoError(t, err)
	got, err := svc.GetAchievement(ctx, 6, testYear)
	require.NoError(t, err)
	assert.Equal(t, models.LevelSilver, got.Level)

	_, err = svc.UpdateAchievement(ctx, 6, models.LevelGold)
	require.NoError(t, err)
	tally, err := w.reader().TallyStudent(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, models.Tally{Gold: 1}, tally)

	require.NoError(t, svc.DeleteAchievement(ctx, 6, testYear))
	_, err = svc.GetAchievement(ctx, 6, testYear)
	assert.ErrorIs(t, err, apperrors.ErrAchievementNotFound)

	require.Len(t, pub.events, 4)
	types := make([]string, 0, len(pub.events))
	for _, e := range pub.events {
		types = append(types, e.Type)
		assert.Equal(t, int64(6), e.StudentID)
		assert.Equal(t, int64(1), e.InstituteID)
		assert.Equal(t, int64(10), e.GroupID)
		assert.Equal(t, testYear, e.Year)
	}
	assert.Equal(t, []string{
		models.AchievementRecorded,
		models.AchievementRecorded,
		models.AchievementUpdated,
		models.AchievementDeleted,
	}, types)
	assert.Equal(t, models.LevelGold, pub.events[2].Level)
}

func TestReportService_InstituteCreatedAfterCaching(t *testing.T) {
	w := newGTOWorld()
	cache := newFakeCache()
	engine := w.engine(cache)
	reports := NewReportService(w.reader(), engine)
	institutes := NewInstituteService(w.institutes, engine)
	ctx := context.Background()

	_, err := reports.GetInstituteReport(ctx, 1)
	require.NoError(t, err)
	require.Contains(t, cache.entries, testYear)

	created := &models.Institute{Name: "Институт физики"}
	require.NoError(t, institutes.CreateInstitute(ctx, created))
	assert.NotContains(t, cache.entries, testYear)

	report, err := reports.GetInstituteReport(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Tally{}, report.CountByInstitute)
	assert.Equal(t, models.Rank{Gold: 4, Silver: 4, Bronze: 4}, report.Rating)
}

func TestReportService_StaleSnapshotMissingInstitute(t *testing.T) {
	w := newGTOWorld()
	cache := newFakeCache()
	engine := w.engine(cache)
	reports := NewReportService(w.reader(), engine)
	ctx := context.Background()

	_, err := reports.GetInstituteReport(ctx, 1)
	require.NoError(t, err)

	// written by another instance, the local snapshot is not dropped
	require.NoError(t, w.institutes.Create(ctx, &models.Institute{Name: "Институт химии"}))

	report, err := reports.GetInstituteReport(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), report.InstituteID)
	assert.Equal(t, 1, cache.invalidated)
}

func TestStandingsFollowStudentAndGroupWrites(t *testing.T) {
	w := newGTOWorld()
	cache := newFakeCache()
	engine := w.engine(cache)
	reports := NewReportService(w.reader(), engine)
	students := NewStudentService(w.students, w.groups, w.institutes, engine)
	groups := NewGroupService(w.groups, w.institutes, engine)
	ctx := context.Background()

	_, err := reports.GetInstituteReport(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, students.DeleteStudent(ctx, 1))
	assert.Equal(t, 1, cache.invalidated)

	report, err := reports.GetInstituteReport(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Tally{Gold: 2, Silver: 1}, report.CountByInstitute)

	standings, err := engine.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.CountByInstitute, standings[0].Tally)

	require.NoError(t, groups.CreateGroup(ctx, &models.Group{InstituteID: 3, Course: 1, Name: "ПР-11"}))
	assert.Equal(t, 2, cache.invalidated)

	assert.ErrorIs(t, students.DeleteStudent(ctx, 404), apperrors.ErrStudentNotFound)
	assert.Equal(t, 2, cache.invalidated)
}
