package services

import (
	"context"
	"errors"

	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

// ReportService assembles the GTO report of an institute
type ReportService interface {
	GetInstituteReport(ctx context.Context, instituteID int64) (*models.InstituteReport, error)
}

type reportServiceImpl struct {
	reader GTOReader
	rating RatingEngine
}

// NewReportService creates a new report service
func NewReportService(reader GTOReader, rating RatingEngine) ReportService {
	return &reportServiceImpl{
		reader: reader,
		rating: rating,
	}
}

// GetInstituteReport combines the institute's tally, the global tally, its rank and level shares
func (s *reportServiceImpl) GetInstituteReport(ctx context.Context, instituteID int64) (*models.InstituteReport, error) {
	count, err := s.reader.TallyInstitute(ctx, instituteID)
	if err != nil {
		return nil, err
	}

	members, err := s.reader.TallyAll(ctx)
	if err != nil {
		return nil, err
	}

	rank, err := s.rank(ctx, instituteID)
	if err != nil {
		return nil, err
	}

	return &models.InstituteReport{
		InstituteID:      instituteID,
		Year:             s.reader.CurrentYear(),
		CountByInstitute: count,
		MembersCount:     members,
		Rating:           rank,
		PercentByCommon:  PercentByCommon(count),
	}, nil
}

// rank ranks an institute that is known to exist. A snapshot taken before the institute was
// created does not list it, so it is dropped and computed once more.
func (s *reportServiceImpl) rank(ctx context.Context, instituteID int64) (models.Rank, error) {
	standings, err := s.rating.Standings(ctx)
	if err != nil {
		return models.Rank{}, err
	}

	rank, err := RankInstitute(standings, instituteID)
	if !errors.Is(err, apperrors.ErrInstituteNotFound) {
		return rank, err
	}

	s.rating.Invalidate(ctx)
	standings, err = s.rating.Standings(ctx)
	if err != nil {
		return models.Rank{}, err
	}
	return RankInstitute(standings, instituteID)
}

// PercentByCommon returns each level's share of the tally's own total, or zeros for an empty tally
func PercentByCommon(t models.Tally) models.Percentages {
	total := t.Total()
	if total == 0 {
		return models.Percentages{}
	}
	share := func(n int) float64 {
		return float64(n) / float64(total) * 100
	}
	return models.Percentages{
		Gold:   share(t.Gold),
		Silver: share(t.Silver),
		Bronze: share(t.Bronze),
	}
}
