package services

import (
	"context"
	"sort"

	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/repositories"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

// In-memory stores used by the service tests.

type fakeInstitutes struct {
	rows   map[int64]*models.Institute
	nextID int64
}

func newFakeInstitutes(rows ...*models.Institute) *fakeInstitutes {
	f := &fakeInstitutes{rows: map[int64]*models.Institute{}}
	for _, r := range rows {
		f.rows[r.ID] = r
		if r.ID > f.nextID {
			f.nextID = r.ID
		}
	}
	return f
}

func (f *fakeInstitutes) Create(_ context.Context, in *models.Institute) error {
	f.nextID++
	in.ID = f.nextID
	f.rows[in.ID] = in
	return nil
}

func (f *fakeInstitutes) GetByID(_ context.Context, id int64) (*models.Institute, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrInstituteNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeInstitutes) List(_ context.Context, _ repositories.Page) ([]*models.Institute, error) {
	out := make([]*models.Institute, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeInstitutes) Count(_ context.Context) (int64, error) {
	return int64(len(f.rows)), nil
}

type fakeGroups struct {
	rows   map[int64]*models.Group
	nextID int64
}

func newFakeGroups(rows ...*models.Group) *fakeGroups {
	f := &fakeGroups{rows: map[int64]*models.Group{}}
	for _, r := range rows {
		f.rows[r.ID] = r
		if r.ID > f.nextID {
			f.nextID = r.ID
		}
	}
	return f
}

func (f *fakeGroups) Create(_ context.Context, g *models.Group) error {
	for _, r := range f.rows {
		if r.Name == g.Name {
			return apperrors.ErrGroupNameExists
		}
	}
	f.nextID++
	g.ID = f.nextID
	f.rows[g.ID] = g
	return nil
}

func (f *fakeGroups) GetByID(_ context.Context, id int64) (*models.Group, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrGroupNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeGroups) List(_ context.Context, filter repositories.GroupFilter) ([]*models.Group, error) {
	var out []*models.Group
	for _, r := range f.rows {
		if filter.InstituteID > 0 && r.InstituteID != filter.InstituteID {
			continue
		}
		if filter.Course > 0 && r.Course != filter.Course {
			continue
		}
		if filter.Course == 0 {
			if filter.MinCourse > 0 && r.Course < filter.MinCourse {
				continue
			}
			if filter.MaxCourse > 0 && r.Course > filter.MaxCourse {
				continue
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeGroups) Count(ctx context.Context, filter repositories.GroupFilter) (int64, error) {
	rows, _ := f.List(ctx, filter)
	return int64(len(rows)), nil
}

type fakeStudents struct {
	rows   map[int64]*models.Student
	nextID int64
}

func newFakeStudents(rows ...*models.Student) *fakeStudents {
	f := &fakeStudents{rows: map[int64]*models.Student{}}
	for _, r := range rows {
		f.rows[r.ID] = r
		if r.ID > f.nextID {
			f.nextID = r.ID
		}
	}
	return f
}

func (f *fakeStudents) conflict(s *models.Student) bool {
	for _, r := range f.rows {
		if r.ID != s.ID && (r.Email == s.Email || r.PhoneNumber == s.PhoneNumber) {
			return true
		}
	}
	return false
}

func (f *fakeStudents) Create(_ context.Context, s *models.Student) error {
	if f.conflict(s) {
		return apperrors.ErrStudentExists
	}
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeStudents) GetByID(_ context.Context, id int64) (*models.Student, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStudents) List(_ context.Context, filter repositories.StudentFilter) ([]*models.Student, error) {
	var groupSet map[int64]bool
	if filter.GroupIDs != nil {
		groupSet = map[int64]bool{}
		for _, id := range filter.GroupIDs {
			groupSet[id] = true
		}
	}

	var out []*models.Student
	for _, r := range f.rows {
		if filter.InstituteID > 0 && r.InstituteID != filter.InstituteID {
			continue
		}
		if filter.GroupID > 0 && r.GroupID != filter.GroupID {
			continue
		}
		if groupSet != nil && !groupSet[r.GroupID] {
			continue
		}
		if filter.FirstName != "" && r.FirstName != filter.FirstName {
			continue
		}
		if filter.LastName != "" && r.LastName != filter.LastName {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStudents) ListIDs(ctx context.Context, filter repositories.StudentFilter) ([]int64, error) {
	rows, _ := f.List(ctx, filter)
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (f *fakeStudents) Count(ctx context.Context, filter repositories.StudentFilter) (int64, error) {
	rows, _ := f.List(ctx, filter)
	return int64(len(rows)), nil
}

func (f *fakeStudents) Update(_ context.Context, s *models.Student) error {
	if _, ok := f.rows[s.ID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	if f.conflict(s) {
		return apperrors.ErrStudentExists
	}
	cp := *s
	f.rows[s.ID] = &cp
	return nil
}

func (f *fakeStudents) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(f.rows, id)
	return nil
}

type achievementKey struct {
	studentID int64
	year      int
}

type fakeAchievements struct {
	rows map[achievementKey]*models.Achievement
}

func newFakeAchievements(rows ...*models.Achievement) *fakeAchievements {
	f := &fakeAchievements{rows: map[achievementKey]*models.Achievement{}}
	for _, r := range rows {
		f.rows[achievementKey{r.StudentID, r.Year}] = r
	}
	return f
}

func (f *fakeAchievements) Upsert(_ context.Context, a *models.Achievement) error {
	cp := *a
	f.rows[achievementKey{a.StudentID, a.Year}] = &cp
	return nil
}

func (f *fakeAchievements) Update(_ context.Context, a *models.Achievement) error {
	key := achievementKey{a.StudentID, a.Year}
	if _, ok := f.rows[key]; !ok {
		return apperrors.ErrAchievementNotFound
	}
	cp := *a
	f.rows[key] = &cp
	return nil
}

func (f *fakeAchievements) Find(_ context.Context, studentID int64, year int) (*models.Achievement, bool, error) {
	r, ok := f.rows[achievementKey{studentID, year}]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

func (f *fakeAchievements) ListByYear(_ context.Context, year int, studentIDs []int64) ([]*models.Achievement, error) {
	var set map[int64]bool
	if studentIDs != nil {
		set = map[int64]bool{}
		for _, id := range studentIDs {
			set[id] = true
		}
	}

	var out []*models.Achievement
	for _, r := range f.rows {
		if r.Year != year {
			continue
		}
		if set != nil && !set[r.StudentID] {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (f *fakeAchievements) Delete(_ context.Context, studentID int64, year int) error {
	key := achievementKey{studentID, year}
	if _, ok := f.rows[key]; !ok {
		return apperrors.ErrAchievementNotFound
	}
	delete(f.rows, key)
	return nil
}

type fakeUsers struct {
	rows   map[int64]*models.User
	nextID int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{rows: map[int64]*models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	for _, r := range f.rows {
		if r.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, r := range f.rows {
		if r.Email == email {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) List(_ context.Context, _ repositories.Page) ([]*models.User, error) {
	out := make([]*models.User, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) Count(_ context.Context) (int64, error) {
	return int64(len(f.rows)), nil
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) error {
	r, ok := f.rows[u.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	r.Email, r.FullName, r.IsActive, r.IsSuperuser = u.Email, u.FullName, u.IsActive, u.IsSuperuser
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	r, ok := f.rows[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	r.Password = hash
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeTokens struct {
	rows map[string]*models.AccessToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{rows: map[string]*models.AccessToken{}}
}

func (f *fakeTokens) Create(_ context.Context, t *models.AccessToken) error {
	if _, ok := f.rows[t.ID]; ok {
		return apperrors.ErrTokenInvalid
	}
	cp := *t
	cp.IsActive = true
	f.rows[t.ID] = &cp
	return nil
}

func (f *fakeTokens) GetByID(_ context.Context, id string) (*models.AccessToken, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeTokens) Deactivate(_ context.Context, id string) error {
	r, ok := f.rows[id]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	r.IsActive = false
	return nil
}

func (f *fakeTokens) DeactivateAllForEmail(_ context.Context, email string) (int64, error) {
	var n int64
	for _, r := range f.rows {
		if r.Email == email && r.IsActive {
			r.IsActive = false
			n++
		}
	}
	return n, nil
}

type fakeResults struct {
	kind        models.ResultKind
	definitions map[int64]*models.ResultDefinition
	rows        map[int64]*models.ResultRecord
	nextID      int64
}

func newFakeResults(kind models.ResultKind, defs ...*models.ResultDefinition) *fakeResults {
	f := &fakeResults{
		kind:        kind,
		definitions: map[int64]*models.ResultDefinition{},
		rows:        map[int64]*models.ResultRecord{},
	}
	for _, d := range defs {
		f.definitions[d.ID] = d
	}
	return f
}

func (f *fakeResults) Kind() models.ResultKind { return f.kind }

func (f *fakeResults) ListDefinitions(_ context.Context) ([]*models.ResultDefinition, error) {
	out := make([]*models.ResultDefinition, 0, len(f.definitions))
	for _, d := range f.definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeResults) CreateDefinition(_ context.Context, def *models.ResultDefinition) error {
	def.ID = int64(len(f.definitions) + 1)
	f.definitions[def.ID] = def
	return nil
}

func (f *fakeResults) DefinitionExists(_ context.Context, id int64) (bool, error) {
	_, ok := f.definitions[id]
	return ok, nil
}

func (f *fakeResults) ListByStudents(_ context.Context, studentIDs []int64) ([]*models.ResultRecord, error) {
	set := map[int64]bool{}
	for _, id := range studentIDs {
		set[id] = true
	}
	var out []*models.ResultRecord
	for _, r := range f.rows {
		if studentIDs == nil || set[r.StudentID] {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentID != out[j].StudentID {
			return out[i].StudentID < out[j].StudentID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeResults) GetResult(_ context.Context, id int64) (*models.ResultRecord, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrResultNotFound
	}
	return r, nil
}

func (f *fakeResults) CreateResult(_ context.Context, rec *models.ResultRecord) error {
	f.nextID++
	rec.ID = f.nextID
	rec.Kind = f.kind
	cp := *rec
	f.rows[rec.ID] = &cp
	return nil
}

func (f *fakeResults) UpdateResult(_ context.Context, rec *models.ResultRecord) error {
	r, ok := f.rows[rec.ID]
	if !ok || r.StudentID != rec.StudentID {
		return apperrors.ErrResultNotFound
	}
	cp := *rec
	f.rows[rec.ID] = &cp
	return nil
}

func (f *fakeResults) DeleteResult(_ context.Context, studentID, id int64) error {
	r, ok := f.rows[id]
	if !ok || r.StudentID != studentID {
		return apperrors.ErrResultNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeCache struct {
	entries     map[int][]models.InstituteTally
	gets        int
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[int][]models.InstituteTally{}}
}

func (f *fakeCache) Get(_ context.Context, year int) ([]models.InstituteTally, bool, error) {
	f.gets++
	s, ok := f.entries[year]
	return s, ok, nil
}

func (f *fakeCache) Set(_ context.Context, year int, standings []models.InstituteTally) error {
	f.entries[year] = standings
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, year int) error {
	f.invalidated++
	delete(f.entries, year)
	return nil
}

type fakePublisher struct {
	events []models.AchievementEvent
}

func (p *fakePublisher) Publish(event models.AchievementEvent) {
	p.events = append(p.events, event)
}
