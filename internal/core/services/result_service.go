package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/elections/internal/core/domain"
	"github.com/vncsmyrnk/elections/internal/core/ports"
)

type resultService struct {
	elections ports.ElectionRepository
	results   ports.ResultRepository
	options
}

func NewResultService(elections ports.ElectionRepository, results ports.ResultRepository, opts ...Option) ports.ResultService {
	return &resultService{
		elections: elections,
		results:   results,
		options:   buildOptions(opts),
	}
}

func (s *resultService) GetResults(ctx context.Context, electionID uuid.UUID, roles domain.Roles) (domain.ElectionResults, error) {
	election, err := s.elections.GetByID(ctx, electionID)
	if err != nil {
		return domain.ElectionResults{}, err
	}
	if !domain.IsVisible(election, roles) {
		return domain.ElectionResults{}, domain.NotFound(domain.ReasonElectionNotFound)
	}
	if !domain.ResultsVisible(election, roles) {
		return domain.ElectionResults{}, domain.Forbidden(domain.ReasonResultsHidden)
	}

	tally, err := s.results.Tally(ctx, electionID)
	if err != nil {
		return domain.ElectionResults{}, err
	}
	return domain.BuildResults(election, tally), nil
}
