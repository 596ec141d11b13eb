package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/elections/internal/core/domain"
	"github.com/vncsmyrnk/elections/internal/core/ports"
)

type anonymizationService struct {
	store ports.VoteStore
	options
}

func NewAnonymizationService(store ports.VoteStore, opts ...Option) ports.AnonymizationService {
	return &anonymizationService{
		store:   store,
		options: buildOptions(opts),
	}
}

// AnonymizeClosedElection replaces every plain member uid of a closed election
// with its keyed hash. Rows already hashed are left alone, so a rerun returns 0.
func (s *anonymizationService) AnonymizeClosedElection(ctx context.Context, electionID uuid.UUID, salt []byte, actor string) (int64, error) {
	logger := s.logger.With("election_id", electionID.String(), "actor", actor)
	allowed, err := s.limiter.Allow(ctx, actor)
	if err != nil {
		logger.Error("anonymization rate limit check failed", "event", "elections_anonymize_failed", "error", err)
		return 0, err
	}
	if !allowed {
		s.audit.Record(ctx, ports.AuditEvent{
			Action:     "election.anonymize",
			Actor:      actor,
			ElectionID: electionID.String(),
			Outcome:    "rate_limited",
			Dangerous:  true,
		})
		logger.Warn("election anonymization throttled", "event", "elections_anonymize_rate_limited")
		return 0, domain.RateLimited(domain.ReasonRateLimited)
	}
	if len(salt) == 0 {
		return 0, domain.BadRequest("anonymization salt is required")
	}

	var anonymized int64
	err = s.store.InElectionTx(ctx, electionID, func(ctx context.Context, tx ports.ElectionTx) error {
		anonymized = 0
		election := tx.Election()
		if election == nil {
			return domain.NotFound(domain.ReasonElectionNotFound)
		}
		if !election.Status.Ended() {
			return domain.NotClosed(domain.ReasonNotClosed)
		}

		uids, err := tx.MemberUIDs(ctx)
		if err != nil {
			return err
		}
		for _, uid := range uids {
			if domain.IsAnonymized(uid) {
				continue
			}
			n, err := tx.ReplaceMemberUID(ctx, uid, domain.AnonymizeIdentity(uid, election.ID, salt))
			if err != nil {
				return err
			}
			anonymized += n
		}
		return nil
	})

	event := ports.AuditEvent{
		Action:     "election.anonymize",
		Actor:      actor,
		ElectionID: electionID.String(),
		Dangerous:  true,
	}
	if err != nil {
		event.Outcome = "failed"
		event.Details = map[string]any{"reason": domain.KindOf(err).Error()}
		s.audit.Record(ctx, event)
		logger.Warn("election anonymization failed", "event", "elections_anonymize_failed", "error", err)
		return 0, err
	}

	event.Outcome = "ok"
	event.Details = map[string]any{"anonymized": anonymized}
	s.audit.Record(ctx, event)
	s.metrics.AddAnonymized(anonymized)
	logger.Warn("DANGEROUS: election ballots anonymized",
		"event", "elections_anonymize_completed",
		"anonymized", anonymized,
	)
	return anonymized, nil
}
