package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

// AchievementService writes current-year GTO records
type AchievementService interface {
	// RecordAchievement creates or replaces the student's record for the current year
	RecordAchievement(ctx context.Context, studentID int64, level models.Level) (*models.Achievement, error)
	// UpdateAchievement changes an existing current-year record
	UpdateAchievement(ctx context.Context, studentID int64, level models.Level) (*models.Achievement, error)
	GetAchievement(ctx context.Context, studentID int64, year int) (*models.Achievement, error)
	DeleteAchievement(ctx context.Context, studentID int64, year int) error
}

type achievementServiceImpl struct {
	achievements AchievementStore
	students     StudentStore
	rating       RatingEngine
	publisher    AchievementPublisher
	clock        Clock
	logger       zerolog.Logger
}

// NewAchievementService creates a new achievement service. rating and publisher may be nil.
func NewAchievementService(
	achievements AchievementStore,
	students StudentStore,
	rating RatingEngine,
	publisher AchievementPublisher,
	clock Clock,
	logger zerolog.Logger,
) AchievementService {
	return &achievementServiceImpl{
		achievements: achievements,
		students:     students,
		rating:       rating,
		publisher:    publisher,
		clock:        clock,
		logger:       logger,
	}
}

func (s *achievementServiceImpl) prepare(ctx context.Context, studentID int64, level models.Level) (*models.Achievement, *models.Student, error) {
	if !level.Valid() {
		return nil, nil, apperrors.ErrInvalidLevel
	}
	if studentID <= 0 {
		return nil, nil, fmt.Errorf("%w: invalid student ID", apperrors.ErrValidationFailed)
	}
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, nil, err
	}

	now := s.clock.now()
	return &models.Achievement{
		StudentID: studentID,
		Year:      now.Year(),
		Level:     level,
		UpdatedAt: now,
	}, student, nil
}

// changed drops cached standings and notifies subscribers
func (s *achievementServiceImpl) changed(ctx context.Context, eventType string, student *models.Student, a *models.Achievement) {
	if s.rating != nil {
		s.rating.Invalidate(ctx)
	}
	if s.publisher == nil || student == nil {
		return
	}
	s.publisher.Publish(models.AchievementEvent{
		Type:        eventType,
		InstituteID: student.InstituteID,
		GroupID:     student.GroupID,
		StudentID:   a.StudentID,
		Year:        a.Year,
		Level:       a.Level,
		At:          s.clock.now(),
	})
}

func (s *achievementServiceImpl) RecordAchievement(ctx context.Context, studentID int64, level models.Level) (*models.Achievement, error) {
	a, student, err := s.prepare(ctx, studentID, level)
	if err != nil {
		return nil, err
	}

	if err := s.achievements.Upsert(ctx, a); err != nil {
		return nil, fmt.Errorf("error recording achievement: %w", err)
	}
	s.changed(ctx, models.AchievementRecorded, student, a)

	s.logger.Info().
		Int64("studentID", studentID).
		Int("year", a.Year).
		Str("level", string(level)).
		Msg("GTO achievement recorded")
	return a, nil
}

func (s *achievementServiceImpl) UpdateAchievement(ctx context.Context, studentID int64, level models.Level) (*models.Achievement, error) {
	a, student, err := s.prepare(ctx, studentID, level)
	if err != nil {
		return nil, err
	}

	if err := s.achievements.Update(ctx, a); err != nil {
		if errors.Is(err, apperrors.ErrAchievementNotFound) {
			return nil, apperrors.ErrAchievementNotFound
		}
		return nil, fmt.Errorf("error updating achievement: %w", err)
	}
	s.changed(ctx, models.AchievementUpdated, student, a)

	return a, nil
}

func (s *achievementServiceImpl) GetAchievement(ctx context.Context, studentID int64, year int) (*models.Achievement, error) {
	a, found, err := s.achievements.Find(ctx, studentID, year)
	if err != nil {
		return nil, fmt.Errorf("error retrieving achievement: %w", err)
	}
	if !found {
		return nil, apperrors.ErrAchievementNotFound
	}
	return a, nil
}

func (s *achievementServiceImpl) DeleteAchievement(ctx context.Context, studentID int64, year int) error {
	if err := s.achievements.Delete(ctx, studentID, year); err != nil {
		return err
	}
	if year != s.clock.year() {
		return nil
	}

	// the student may already be gone; standings are dropped regardless
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		student = nil
	}
	s.changed(ctx, models.AchievementDeleted, student, &models.Achievement{StudentID: studentID, Year: year})
	return nil
}
