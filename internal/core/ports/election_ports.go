package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/elections/internal/core/domain"
)

type ElectionRepository interface {
	Save(ctx context.Context, election *domain.Election) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Election, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Election, error)
	// Update runs fn against the row-locked election and persists the status and hidden flag it leaves behind.
	Update(ctx context.Context, id uuid.UUID, fn func(e *domain.Election) error) (*domain.Election, error)
}

type CreateElectionInput struct {
	Title          string
	Question       string
	VotingType     domain.VotingType
	MaxSelections  int
	Answers        []domain.Answer
	Eligibility    domain.Eligibility
	ScheduledStart *time.Time
	ScheduledEnd   *time.Time
	Hidden         bool
	Actor          string
}

type ElectionService interface {
	Create(ctx context.Context, input CreateElectionInput) (*domain.Election, error)
	Get(ctx context.Context, id uuid.UUID, roles domain.Roles) (*domain.Election, error)
	List(ctx context.Context, roles domain.Roles, includeArchived bool) ([]*domain.Election, error)
	Transition(ctx context.Context, id uuid.UUID, action domain.Action, actor string) (*domain.Election, error)
	SetHidden(ctx context.Context, id uuid.UUID, hidden bool, actor string) (*domain.Election, error)
}
