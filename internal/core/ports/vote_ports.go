package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/elections/internal/core/domain"
)

// ElectionTx is a database transaction that holds the row lock of one election.
type ElectionTx interface {
	// Election returns the locked election snapshot, or nil when no row exists.
	Election() *domain.Election
	HasVoted(ctx context.Context, identity string) (bool, error)
	InsertBallots(ctx context.Context, ballots []domain.Ballot) error
	// MemberUIDs lists the distinct identity values stored for the election's ballots.
	MemberUIDs(ctx context.Context) ([]string, error)
	ReplaceMemberUID(ctx context.Context, from, to string) (int64, error)
}

type VoteStore interface {
	// InElectionTx locks the election row and runs fn. A nil return commits, anything else rolls back.
	InElectionTx(ctx context.Context, electionID uuid.UUID, fn func(ctx context.Context, tx ElectionTx) error) error
	// Election reads the election without locking it, or nil when no row exists.
	Election(ctx context.Context, electionID uuid.UUID) (*domain.Election, error)
	HasVoted(ctx context.Context, electionID uuid.UUID, identity string) (bool, error)
}

type SubmitVoteInput struct {
	ElectionID uuid.UUID
	Identity   string
	Roles      domain.Roles
	AnswerIDs  []string
}

type VoteService interface {
	SubmitVote(ctx context.Context, input SubmitVoteInput) ([]uuid.UUID, error)
	GetVoteStatus(ctx context.Context, electionID uuid.UUID, identity string, roles domain.Roles) (bool, error)
}

type AnonymizationService interface {
	AnonymizeClosedElection(ctx context.Context, electionID uuid.UUID, salt []byte, actor string) (int64, error)
}

// RateLimiter records an attempt for key and reports whether it is within quota.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
