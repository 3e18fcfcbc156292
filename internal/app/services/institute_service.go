package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

// InstituteService defines the interface for institute-related operations
type InstituteService interface {
	CreateInstitute(ctx context.Context, institute *models.Institute) error
	GetInstitute(ctx context.Context, id int64) (*models.Institute, error)
	ListInstitutes(ctx context.Context, params ListParams) ([]*models.Institute, int64, error)
}

type instituteServiceImpl struct {
	instituteRepo InstituteStore
	standings     StandingsInvalidator
}

// NewInstituteService creates a new institute service instance. standings may be nil.
func NewInstituteService(instituteRepo InstituteStore, standings StandingsInvalidator) InstituteService {
	return &instituteServiceImpl{
		instituteRepo: instituteRepo,
		standings:     standings,
	}
}

// CreateInstitute creates a new institute
func (s *instituteServiceImpl) CreateInstitute(ctx context.Context, institute *models.Institute) error {
	if institute == nil {
		return fmt.Errorf("%w: institute is nil", apperrors.ErrValidationFailed)
	}
	institute.Name = strings.TrimSpace(institute.Name)
	if institute.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidationFailed)
	}

	if err := s.instituteRepo.Create(ctx, institute); err != nil {
		return fmt.Errorf("error creating institute: %w", err)
	}
	invalidateStandings(ctx, s.standings)
	return nil
}

// GetInstitute retrieves an institute by ID
func (s *instituteServiceImpl) GetInstitute(ctx context.Context, id int64) (*models.Institute, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid institute ID", apperrors.ErrValidationFailed)
	}

	institute, err := s.instituteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrInstituteNotFound) {
			return nil, apperrors.ErrInstituteNotFound
		}
		return nil, fmt.Errorf("error retrieving institute: %w", err)
	}
	return institute, nil
}

// ListInstitutes returns a page of institutes and the total count
func (s *instituteServiceImpl) ListInstitutes(ctx context.Context, params ListParams) ([]*models.Institute, int64, error) {
	institutes, err := s.instituteRepo.List(ctx, params.page())
	if err != nil {
		return nil, 0, fmt.Errorf("error retrieving institutes: %w", err)
	}

	total, err := s.instituteRepo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting institutes: %w", err)
	}

	return institutes, total, nil
}
