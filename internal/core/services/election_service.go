package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/elections/internal/core/domain"
	"github.com/vncsmyrnk/elections/internal/core/ports"
)

type electionService struct {
	repo ports.ElectionRepository
	options
}

func NewElectionService(repo ports.ElectionRepository, opts ...Option) ports.ElectionService {
	return &electionService{
		repo:    repo,
		options: buildOptions(opts),
	}
}

func (s *electionService) Create(ctx context.Context, input ports.CreateElectionInput) (*domain.Election, error) {
	maxSelections := input.MaxSelections
	if maxSelections == 0 && input.VotingType == domain.VotingTypeSingleChoice {
		maxSelections = 1
	}

	now := s.now().UTC()
	election := &domain.Election{
		ID:             uuid.New(),
		Title:          input.Title,
		Question:       input.Question,
		VotingType:     input.VotingType,
		MaxSelections:  maxSelections,
		Answers:        input.Answers,
		Eligibility:    input.Eligibility,
		Status:         domain.StatusDraft,
		ScheduledStart: utcPtr(input.ScheduledStart),
		ScheduledEnd:   utcPtr(input.ScheduledEnd),
		Hidden:         input.Hidden,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := domain.ValidateDefinition(election); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, election); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ports.AuditEvent{
		Action:     "election.create",
		Actor:      input.Actor,
		ElectionID: election.ID.String(),
		Outcome:    "ok",
	})
	s.logger.Info("election created", "event", "elections_election_created", "election_id", election.ID.String())
	return election, nil
}

func (s *electionService) Get(ctx context.Context, id uuid.UUID, roles domain.Roles) (*domain.Election, error) {
	election, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.IsVisible(election, roles) {
		return nil, domain.NotFound(domain.ReasonElectionNotFound)
	}
	return election, nil
}

func (s *electionService) List(ctx context.Context, roles domain.Roles, includeArchived bool) ([]*domain.Election, error) {
	all, err := s.repo.List(ctx, includeArchived)
	if err != nil {
		return nil, err
	}

	visible := make([]*domain.Election, 0, len(all))
	for _, e := range all {
		if domain.IsVisible(e, roles) {
			visible = append(visible, e)
		}
	}
	return visible, nil
}

func (s *electionService) Transition(ctx context.Context, id uuid.UUID, action domain.Action, actor string) (*domain.Election, error) {
	var from domain.Status
	election, err := s.repo.Update(ctx, id, func(e *domain.Election) error {
		next, err := domain.NextStatus(e.Status, action)
		if err != nil {
			return err
		}
		from = e.Status
		e.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(string(action))
	s.audit.Record(ctx, ports.AuditEvent{
		Action:     "election." + string(action),
		Actor:      actor,
		ElectionID: id.String(),
		Outcome:    "ok",
		Details:    map[string]any{"from": string(from), "to": string(election.Status)},
	})
	s.logger.Info("election status changed",
		"event", "elections_election_transition",
		"election_id", id.String(),
		"from", string(from),
		"to", string(election.Status),
	)
	return election, nil
}

func (s *electionService) SetHidden(ctx context.Context, id uuid.UUID, hidden bool, actor string) (*domain.Election, error) {
	election, err := s.repo.Update(ctx, id, func(e *domain.Election) error {
		e.Hidden = hidden
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, ports.AuditEvent{
		Action:     "election.set_hidden",
		Actor:      actor,
		ElectionID: id.String(),
		Outcome:    "ok",
		Details:    map[string]any{"hidden": hidden},
	})
	return election, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
