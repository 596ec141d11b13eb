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
)

const DefaultLockTimeout = 500 * time.Millisecond

type lockedTx struct {
	db          *sql.DB
	lockTimeout time.Duration
	logger      *slog.Logger
}

func newLockedTx(db *sql.DB, lockTimeout time.Duration, logger *slog.Logger) lockedTx {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return lockedTx{db: db, lockTimeout: lockTimeout, logger: logger}
}

// run begins a transaction, takes the election row lock and calls fn with the
// locked snapshot (nil when the row does not exist). The transaction commits
// only when fn returns nil.
func (l lockedTx) run(ctx context.Context, electionID uuid.UUID, fn func(ctx context.Context, tx *sql.Tx, election *domain.Election) error) (err error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(l.logger, "failed to begin transaction", err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			l.logger.Error("transaction rollback failed",
				"event", "elections_rollback_failed",
				"fatal", true,
				"election_id", electionID.String(),
				"error", rbErr,
				"cause", err,
			)
			err = fmt.Errorf("%w (cause: %v)", domain.ErrRollbackFailed, err)
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", l.lockTimeout.Milliseconds())); err != nil {
		return classify(l.logger, "failed to set lock timeout", err)
	}

	election, err := lockElection(ctx, tx, electionID)
	if err != nil {
		return classify(l.logger, "failed to lock election", err)
	}

	if err = fn(ctx, tx, election); err != nil {
		return classify(l.logger, "election transaction failed", err)
	}

	if err = tx.Commit(); err != nil {
		done = true
		return classify(l.logger, "failed to commit transaction", err)
	}
	done = true
	return nil
}

func lockElection(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Election, error) {
	query := `
		SELECT id, title, question, voting_type, max_selections, eligibility, status,
		       scheduled_start, scheduled_end, hidden, created_at, updated_at
		FROM elections
		WHERE id = $1
		FOR UPDATE
	`
	var e domain.Election
	err := scanElection(tx.QueryRowContext(ctx, query, id), &e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	answers, err := fetchAnswers(ctx, tx, e.ID)
	if err != nil {
		return nil, err
	}
	e.Answers = answers
	return &e, nil
}
