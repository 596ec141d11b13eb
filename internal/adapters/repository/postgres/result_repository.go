package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/elections/internal/core/domain"
	"github.com/vncsmyrnk/elections/internal/core/ports"
)

type resultRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewResultRepository(db *sql.DB, logger *slog.Logger) ports.ResultRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &resultRepository{
		db:     db,
		logger: logger,
	}
}

// Tally counts ballots per answer. The projection never selects member_uid, id or submitted_at.
func (r *resultRepository) Tally(ctx context.Context, electionID uuid.UUID) (domain.Tally, error) {
	query := `
		SELECT answer_id, COUNT(*)
		FROM ballots
		WHERE election_id = $1
		GROUP BY answer_id
	`
	rows, err := r.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return domain.Tally{}, classify(r.logger, "failed to tally ballots", err)
	}
	defer rows.Close()

	tally := domain.Tally{Counts: make(map[string]int64)}
	for rows.Next() {
		var answerID string
		var count int64
		if err := rows.Scan(&answerID, &count); err != nil {
			return domain.Tally{}, fmt.Errorf("failed to scan tally: %w", err)
		}
		tally.Counts[answerID] = count
	}
	if err := rows.Err(); err != nil {
		return domain.Tally{}, fmt.Errorf("error iterating tally: %w", err)
	}

	voters := `SELECT COUNT(DISTINCT member_uid) FROM ballots WHERE election_id = $1`
	if err := r.db.QueryRowContext(ctx, voters, electionID).Scan(&tally.TotalVoters); err != nil {
		return domain.Tally{}, classify(r.logger, "failed to count voters", err)
	}
	return tally, nil
}
