package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/elections/internal/core/domain"
	"github.com/vncsmyrnk/elections/internal/core/ports"
)

const (
	OutcomeAccepted    = "accepted"
	OutcomeNotFound    = "not_found"
	OutcomeForbidden   = "forbidden"
	OutcomeRejected    = "rejected"
	OutcomeDuplicate   = "duplicate"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

type voteService struct {
	store ports.VoteStore
	options
}

func NewVoteService(store ports.VoteStore, opts ...Option) ports.VoteService {
	return &voteService{
		store:   store,
		options: buildOptions(opts),
	}
}

// SubmitVote records one ballot per selected answer. Every check after the
// row lock runs against the locked snapshot, so two submissions for the same
// election never interleave between the duplicate check and the insert.
func (s *voteService) SubmitVote(ctx context.Context, input ports.SubmitVoteInput) ([]uuid.UUID, error) {
	started := s.now()
	ids, err := s.submit(ctx, input)
	outcome := voteOutcome(err)
	s.metrics.ObserveVote(outcome, s.now().Sub(started))

	logger := s.logger.With(
		"event", "elections_vote_"+outcome,
		"election_id", input.ElectionID.String(),
	)
	switch outcome {
	case OutcomeAccepted:
		logger.Info("vote submitted", "ballots", len(ids))
		s.audit.Record(ctx, ports.AuditEvent{
			Action:     "vote.submitted",
			ElectionID: input.ElectionID.String(),
			Outcome:    outcome,
			Details:    map[string]any{"ballots": len(ids)},
		})
	case OutcomeDuplicate, OutcomeUnavailable:
		logger.Info("vote not recorded", "reason", domain.ReasonOf(err))
	case OutcomeError:
		logger.Error("vote submission failed", "error", err)
	default:
		logger.Debug("vote refused", "reason", domain.ReasonOf(err))
	}

	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *voteService) submit(ctx context.Context, input ports.SubmitVoteInput) ([]uuid.UUID, error) {
	if err := domain.ValidateIdentity(input.Identity); err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	err := s.store.InElectionTx(ctx, input.ElectionID, func(ctx context.Context, tx ports.ElectionTx) error {
		election := tx.Election()
		if election == nil || !domain.IsVisible(election, input.Roles) {
			return domain.NotFound(domain.ReasonElectionNotFound)
		}
		if !domain.IsEligible(election, input.Roles) {
			return domain.Forbidden(domain.ReasonNotEligible)
		}

		now := s.now()
		if ok, reason := domain.ValidateVotingWindow(election, now); !ok {
			return domain.Forbidden(reason)
		}
		if ok, reason := domain.ValidateAnswers(input.AnswerIDs, election); !ok {
			return domain.BadRequest(reason)
		}

		voted, err := tx.HasVoted(ctx, input.Identity)
		if err != nil {
			return err
		}
		if voted {
			return domain.Conflict(domain.ReasonAlreadyVoted)
		}

		submittedAt := domain.SubmissionTime(now)
		ballots := make([]domain.Ballot, 0, len(input.AnswerIDs))
		for _, answerID := range input.AnswerIDs {
			answer, _ := election.Answer(answerID)
			ballots = append(ballots, domain.Ballot{
				ID:          uuid.New(),
				ElectionID:  election.ID,
				MemberUID:   input.Identity,
				AnswerID:    answer.ID,
				AnswerText:  answer.Text,
				TokenHash:   domain.IdentityTokenHash,
				SubmittedAt: submittedAt,
			})
		}
		if err := tx.InsertBallots(ctx, ballots); err != nil {
			return err
		}

		ids = make([]uuid.UUID, len(ballots))
		for i, b := range ballots {
			ids[i] = b.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetVoteStatus reports whether identity already voted. Elections the caller
// cannot see answer not found, same as SubmitVote.
func (s *voteService) GetVoteStatus(ctx context.Context, electionID uuid.UUID, identity string, roles domain.Roles) (bool, error) {
	if err := domain.ValidateIdentity(identity); err != nil {
		return false, err
	}

	election, err := s.store.Election(ctx, electionID)
	if err != nil {
		return false, err
	}
	if election == nil || !domain.IsVisible(election, roles) {
		return false, domain.NotFound(domain.ReasonElectionNotFound)
	}
	return s.store.HasVoted(ctx, electionID, identity)
}

func voteOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrForbidden):
		return OutcomeForbidden
	case errors.Is(err, domain.ErrBadRequest):
		return OutcomeRejected
	case errors.Is(err, domain.ErrConflict):
		return OutcomeDuplicate
	case errors.Is(err, domain.ErrUnavailable):
		return OutcomeUnavailable
	}
	return OutcomeError
}
