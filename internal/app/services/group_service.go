package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/repositories"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

// GroupListParams filters a group listing
type GroupListParams struct {
	InstituteID int64
	Course      int
	ListParams
}

// GroupService defines the interface for group-related operations
type GroupService interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id int64) (*models.Group, error)
	ListGroups(ctx context.Context, params GroupListParams) ([]*models.Group, int64, error)
}

type groupServiceImpl struct {
	groupRepo     GroupStore
	instituteRepo InstituteStore
	standings     StandingsInvalidator
}

// NewGroupService creates a new group service instance. standings may be nil.
func NewGroupService(groupRepo GroupStore, instituteRepo InstituteStore, standings StandingsInvalidator) GroupService {
	return &groupServiceImpl{
		groupRepo:     groupRepo,
		instituteRepo: instituteRepo,
		standings:     standings,
	}
}

// CreateGroup creates a group inside an existing institute
func (s *groupServiceImpl) CreateGroup(ctx context.Context, group *models.Group) error {
	if group == nil {
		return fmt.Errorf("%w: group is nil", apperrors.ErrValidationFailed)
	}
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidationFailed)
	}
	if group.Course <= 0 {
		return fmt.Errorf("%w: course must be greater than 0", apperrors.ErrValidationFailed)
	}
	if group.InstituteID <= 0 {
		return fmt.Errorf("%w: invalid institute ID", apperrors.ErrValidationFailed)
	}

	institute, err := s.instituteRepo.GetByID(ctx, group.InstituteID)
	if err != nil {
		return err
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		if errors.Is(err, apperrors.ErrGroupNameExists) {
			return apperrors.ErrGroupNameExists
		}
		return fmt.Errorf("error creating group: %w", err)
	}
	group.Institute = institute
	invalidateStandings(ctx, s.standings)
	return nil
}

// GetGroup retrieves a group together with its institute
func (s *groupServiceImpl) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid group ID", apperrors.ErrValidationFailed)
	}

	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrGroupNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, fmt.Errorf("error retrieving group: %w", err)
	}

	institute, err := s.instituteRepo.GetByID(ctx, group.InstituteID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving institute of group %d: %w", id, err)
	}
	group.Institute = institute

	return group, nil
}

// ListGroups returns a page of groups filtered by institute and course
func (s *groupServiceImpl) ListGroups(ctx context.Context, params GroupListParams) ([]*models.Group, int64, error) {
	filter := repositories.GroupFilter{
		InstituteID: params.InstituteID,
		Course:      params.Course,
		Page:        params.page(),
	}

	groups, err := s.groupRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving groups: %w", err)
	}

	total, err := s.groupRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting groups: %w", err)
	}

	return groups, total, nil
}
