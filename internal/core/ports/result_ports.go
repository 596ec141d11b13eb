package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/elections/internal/core/domain"
)

type ResultRepository interface {
	Tally(ctx context.Context, electionID uuid.UUID) (domain.Tally, error)
}

type ResultService interface {
	GetResults(ctx context.Context, electionID uuid.UUID, roles domain.Roles) (domain.ElectionResults, error)
}
