package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/services"
	"github.com/yigit/gtostat/internal/middleware"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubReader struct {
	scopes []services.Scope
}

func (r *stubReader) TallyInstitute(context.Context, int64) (models.Tally, error) {
	return models.Tally{}, nil
}
func (r *stubReader) TallyGroup(context.Context, int64) (models.Tally, error) {
	return models.Tally{}, nil
}
func (r *stubReader) TallyStudent(context.Context, int64) (models.Tally, error) {
	return models.Tally{}, nil
}
func (r *stubReader) TallyAll(context.Context) (models.Tally, error) { return models.Tally{}, nil }
func (r *stubReader) CurrentYear() int                                { return 2026 }

func (r *stubReader) Tally(_ context.Context, scope services.Scope) (models.Tally, error) {
	r.scopes = append(r.scopes, scope)
	n := 0
	for _, id := range []int64{scope.InstituteID, scope.GroupID, scope.StudentID} {
		if id != 0 {
			n++
		}
	}
	if n != 1 {
		return models.Tally{}, apperrors.ErrInvalidScope
	}
	return models.Tally{Gold: 2, Silver: 1}, nil
}

type stubReports struct{}

func (stubReports) GetInstituteReport(_ context.Context, id int64) (*models.InstituteReport, error) {
	if id != 1 {
		return nil, apperrors.ErrInstituteNotFound
	}
	return &models.InstituteReport{
		InstituteID:      1,
		Year:             2026,
		CountByInstitute: models.Tally{Gold: 4, Silver: 1},
		Rating:           models.Rank{Gold: 1, Silver: 2, Bronze: 2},
	}, nil
}

type stubAchievements struct {
	recorded map[int64]models.Level
	lookups  []recordLookup
}

func (s *stubAchievements) RecordAchievement(_ context.Context, studentID int64, level models.Level) (*models.Achievement, error) {
	if studentID == 404 {
		return nil, apperrors.ErrStudentNotFound
	}
	s.recorded[studentID] = level
	return &models.Achievement{StudentID: studentID, Year: 2026, Level: level}, nil
}

func (s *stubAchievements) UpdateAchievement(_ context.Context, studentID int64, level models.Level) (*models.Achievement, error) {
	if _, ok := s.recorded[studentID]; !ok {
		return nil, apperrors.ErrAchievementNotFound
	}
	s.recorded[studentID] = level
	return &models.Achievement{StudentID: studentID, Year: 2026, Level: level}, nil
}

type recordLookup struct {
	studentID int64
	year      int
}

func (s *stubAchievements) GetAchievement(_ context.Context, studentID int64, year int) (*models.Achievement, error) {
	s.lookups = append(s.lookups, recordLookup{studentID, year})
	level, ok := s.recorded[studentID]
	if !ok || year != 2026 {
		return nil, apperrors.ErrAchievementNotFound
	}
	return &models.Achievement{StudentID: studentID, Year: year, Level: level}, nil
}

func (s *stubAchievements) DeleteAchievement(_ context.Context, studentID int64, year int) error {
	s.lookups = append(s.lookups, recordLookup{studentID, year})
	if _, ok := s.recorded[studentID]; !ok || year != 2026 {
		return apperrors.ErrAchievementNotFound
	}
	delete(s.recorded, studentID)
	return nil
}

func newGTORouter(t *testing.T) (*gin.Engine, *stubReader, *stubAchievements) {
	t.Helper()
	require.NoError(t, middleware.RegisterValidators())

	reader := &stubReader{}
	achievements := &stubAchievements{recorded: map[int64]models.Level{}}
	c := NewGTOController(stubReports{}, achievements, reader, zerolog.Nop())

	r := gin.New()
	r.GET("/gto", c.GetReport)
	r.GET("/gto/tally", c.GetTally)
	r.POST("/gto", c.RecordAchievement)
	r.PATCH("/gto", c.UpdateAchievement)
	r.GET("/gto/record", c.GetRecord)
	r.DELETE("/gto/record", c.DeleteRecord)
	return r, reader, achievements
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetReport(t *testing.T) {
	r, _, _ := newGTORouter(t)

	w := do(r, http.MethodGet, "/gto?institute_id=1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			CountByInstitute models.Tally `json:"count_by_institute"`
			Rating           models.Rank  `json:"rating"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, models.Tally{Gold: 4, Silver: 1}, body.Data.CountByInstitute)
	assert.Equal(t, 1, body.Data.Rating.Gold)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/gto", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/gto?institute_id=x", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/gto?institute_id=9", "").Code)
}

func TestGetTally(t *testing.T) {
	r, reader, _ := newGTORouter(t)

	w := do(r, http.MethodGet, "/gto/tally?group_id=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.Scope{GroupID: 10}, reader.scopes[0])

	var body struct {
		Data struct {
			Year  int          `json:"year"`
			Tally models.Tally `json:"tally"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2026, body.Data.Year)
	assert.Equal(t, models.Tally{Gold: 2, Silver: 1}, body.Data.Tally)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/gto/tally", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/gto/tally?group_id=1&student_id=2", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/gto/tally?student_id=-3", "").Code)
}

func TestRecordAndUpdateAchievement(t *testing.T) {
	r, _, achievements := newGTORouter(t)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPatch, "/gto", `{"student_id":5,"level":"gold"}`).Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/gto", `{"student_id":5,"level":"bronze"}`).Code)
	assert.Equal(t, models.LevelBronze, achievements.recorded[5])

	assert.Equal(t, http.StatusOK, do(r, http.MethodPatch, "/gto", `{"student_id":5,"level":"gold"}`).Code)
	assert.Equal(t, models.LevelGold, achievements.recorded[5])

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/gto", `{"student_id":5,"level":"platinum"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/gto", `{"level":"gold"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/gto", `{"student_id":404,"level":"gold"}`).Code)
}

func TestGetAndDeleteRecord(t *testing.T) {
	r, _, achievements := newGTORouter(t)
	achievements.recorded[7] = models.LevelSilver

	w := do(r, http.MethodGet, "/gto/record?student_id=7", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data models.Achievement `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.LevelSilver, body.Data.Level)
	assert.Equal(t, recordLookup{7, 2026}, achievements.lookups[0])

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/gto/record?student_id=7&year=2025", "").Code)
	assert.Equal(t, recordLookup{7, 2025}, achievements.lookups[1])

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/gto/record", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/gto/record?student_id=7&year=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodDelete, "/gto/record?student_id=0", "").Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/gto/record?student_id=7&year=2026", "").Code)
	assert.NotContains(t, achievements.recorded, int64(7))
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/gto/record?student_id=7", "").Code)
}
