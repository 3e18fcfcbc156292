package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repositories use
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Page is a skip/limit window over a listing. Limit 0 means no limit.
type Page struct {
	Offset uint64
	Limit  uint64
}

func (p Page) apply(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	return q
}

// Repositories holds all the repository instances
type Repositories struct {
	InstituteRepository   *InstituteRepository
	GroupRepository       *GroupRepository
	StudentRepository     *StudentRepository
	AchievementRepository *AchievementRepository
	UserRepository        *UserRepository
	TokenRepository       *TokenRepository
	StandardRepository    *ResultRepository
	TheoryRepository      *ResultRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db DB) *Repositories {
	return &Repositories{
		InstituteRepository:   NewInstituteRepository(db),
		GroupRepository:       NewGroupRepository(db),
		StudentRepository:     NewStudentRepository(db),
		AchievementRepository: NewAchievementRepository(db),
		UserRepository:        NewUserRepository(db),
		TokenRepository:       NewTokenRepository(db),
		StandardRepository:    NewResultRepository(db, StandardTables),
		TheoryRepository:      NewResultRepository(db, TheoryTables),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
