package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/elections/internal/core/domain"
	"github.com/vncsmyrnk/elections/internal/core/ports"
)

type voteStore struct {
	db     *sql.DB
	locker lockedTx
	logger *slog.Logger
}

func NewVoteStore(db *sql.DB, lockTimeout time.Duration, logger *slog.Logger) ports.VoteStore {
	locker := newLockedTx(db, lockTimeout, logger)
	return &voteStore{
		db:     db,
		locker: locker,
		logger: locker.logger,
	}
}

func (s *voteStore) InElectionTx(ctx context.Context, electionID uuid.UUID, fn func(ctx context.Context, tx ports.ElectionTx) error) error {
	return s.locker.run(ctx, electionID, func(ctx context.Context, tx *sql.Tx, election *domain.Election) error {
		return fn(ctx, &electionTx{tx: tx, election: election, logger: s.logger})
	})
}

func (s *voteStore) Election(ctx context.Context, electionID uuid.UUID) (*domain.Election, error) {
	e, err := loadElection(ctx, s.db, electionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(s.logger, "failed to get election", err)
	}
	return e, nil
}

func (s *voteStore) HasVoted(ctx context.Context, electionID uuid.UUID, identity string) (bool, error) {
	voted, err := hasVoted(ctx, s.db, electionID, identity)
	if err != nil {
		return false, classify(s.logger, "failed to check existing vote", err)
	}
	return voted, nil
}

type electionTx struct {
	tx       *sql.Tx
	election *domain.Election
	logger   *slog.Logger
}

func (t *electionTx) Election() *domain.Election {
	return t.election
}

func (t *electionTx) HasVoted(ctx context.Context, identity string) (bool, error) {
	voted, err := hasVoted(ctx, t.tx, t.election.ID, identity)
	if err != nil {
		return false, classify(t.logger, "failed to check existing vote", err)
	}
	return voted, nil
}

func (t *electionTx) InsertBallots(ctx context.Context, ballots []domain.Ballot) error {
	query := `
		INSERT INTO ballots (id, election_id, member_uid, answer_id, answer_text, token_hash, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	stmt, err := t.tx.PrepareContext(ctx, query)
	if err != nil {
		return classify(t.logger, "failed to prepare ballot statement", err)
	}
	defer stmt.Close()

	for _, b := range ballots {
		_, err := stmt.ExecContext(ctx, b.ID, b.ElectionID, b.MemberUID, b.AnswerID, b.AnswerText, b.TokenHash, b.SubmittedAt)
		if err != nil {
			if isUniqueViolation(err) {
				// The row lock should make this unreachable.
				t.logger.Error("ballot unique constraint violated under election lock",
					"event", "elections_ballot_unique_violation",
					"election_id", b.ElectionID.String(),
					"error", err,
				)
				return domain.Conflict(domain.ReasonAlreadyVoted)
			}
			return classify(t.logger, "failed to insert ballot", err)
		}
	}
	return nil
}

func (t *electionTx) MemberUIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT member_uid FROM ballots WHERE election_id = $1 ORDER BY member_uid`
	rows, err := t.tx.QueryContext(ctx, query, t.election.ID)
	if err != nil {
		return nil, classify(t.logger, "failed to list ballot identities", err)
	}
	defer rows.Close()

	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("failed to scan ballot identity: %w", err)
		}
		uids = append(uids, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ballot identities: %w", err)
	}
	return uids, nil
}

func (t *electionTx) ReplaceMemberUID(ctx context.Context, from, to string) (int64, error) {
	query := `UPDATE ballots SET member_uid = $3 WHERE election_id = $1 AND member_uid = $2`
	res, err := t.tx.ExecContext(ctx, query, t.election.ID, from, to)
	if err != nil {
		return 0, classify(t.logger, "failed to anonymize ballots", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count anonymized ballots: %w", err)
	}
	return n, nil
}

func hasVoted(ctx context.Context, q querier, electionID uuid.UUID, identity string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ballots WHERE election_id = $1 AND member_uid = $2)`
	var exists bool
	if err := q.QueryRowContext(ctx, query, electionID, identity).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
