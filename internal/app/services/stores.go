package services

import (
	"context"
	"time"

	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/repositories"
)

// The store interfaces below are satisfied by the pgx repositories and by in-memory fakes in tests.

type InstituteStore interface {
	Create(ctx context.Context, institute *models.Institute) error
	GetByID(ctx context.Context, id int64) (*models.Institute, error)
	List(ctx context.Context, page repositories.Page) ([]*models.Institute, error)
	Count(ctx context.Context) (int64, error)
}

type GroupStore interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id int64) (*models.Group, error)
	List(ctx context.Context, filter repositories.GroupFilter) ([]*models.Group, error)
	Count(ctx context.Context, filter repositories.GroupFilter) (int64, error)
}

type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context, filter repositories.StudentFilter) ([]*models.Student, error)
	ListIDs(ctx context.Context, filter repositories.StudentFilter) ([]int64, error)
	Count(ctx context.Context, filter repositories.StudentFilter) (int64, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

type AchievementStore interface {
	Upsert(ctx context.Context, a *models.Achievement) error
	Update(ctx context.Context, a *models.Achievement) error
	Find(ctx context.Context, studentID int64, year int) (*models.Achievement, bool, error)
	ListByYear(ctx context.Context, year int, studentIDs []int64) ([]*models.Achievement, error)
	Delete(ctx context.Context, studentID int64, year int) error
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, page repositories.Page) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
}

type TokenStore interface {
	Create(ctx context.Context, token *models.AccessToken) error
	GetByID(ctx context.Context, id string) (*models.AccessToken, error)
	Deactivate(ctx context.Context, id string) error
	DeactivateAllForEmail(ctx context.Context, email string) (int64, error)
}

type ResultStore interface {
	Kind() models.ResultKind
	ListDefinitions(ctx context.Context) ([]*models.ResultDefinition, error)
	CreateDefinition(ctx context.Context, def *models.ResultDefinition) error
	DefinitionExists(ctx context.Context, id int64) (bool, error)
	ListByStudents(ctx context.Context, studentIDs []int64) ([]*models.ResultRecord, error)
	GetResult(ctx context.Context, id int64) (*models.ResultRecord, error)
	CreateResult(ctx context.Context, rec *models.ResultRecord) error
	UpdateResult(ctx context.Context, rec *models.ResultRecord) error
	DeleteResult(ctx context.Context, studentID, id int64) error
}

// StandingsCache stores computed standings per year. Implementations must be safe for concurrent use.
type StandingsCache interface {
	Get(ctx context.Context, year int) ([]models.InstituteTally, bool, error)
	Set(ctx context.Context, year int, standings []models.InstituteTally) error
	Invalidate(ctx context.Context, year int) error
}

// StandingsInvalidator drops cached standings after a write that moves students between institutes
type StandingsInvalidator interface {
	Invalidate(ctx context.Context)
}

func invalidateStandings(ctx context.Context, inv StandingsInvalidator) {
	if inv != nil {
		inv.Invalidate(ctx)
	}
}

// AchievementPublisher fans achievement changes out to live subscribers. Publish must not block.
type AchievementPublisher interface {
	Publish(event models.AchievementEvent)
}

// Clock returns the current time
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func (c Clock) year() int {
	return c.now().Year()
}

// ListParams is a skip/limit window as accepted by the HTTP layer
type ListParams struct {
	Skip  int
	Limit int
}

func (p ListParams) page() repositories.Page {
	var page repositories.Page
	if p.Skip > 0 {
		page.Offset = uint64(p.Skip)
	}
	if p.Limit > 0 {
		page.Limit = uint64(p.Limit)
	}
	return page
}
