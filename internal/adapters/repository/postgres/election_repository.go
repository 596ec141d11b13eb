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

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

const electionColumns = `
	id, title, question, voting_type, max_selections, eligibility, status,
	scheduled_start, scheduled_end, hidden, created_at, updated_at
`

type electionRepository struct {
	db     *sql.DB
	locker lockedTx
	logger *slog.Logger
}

func NewElectionRepository(db *sql.DB, lockTimeout time.Duration, logger *slog.Logger) ports.ElectionRepository {
	locker := newLockedTx(db, lockTimeout, logger)
	return &electionRepository{
		db:     db,
		locker: locker,
		logger: locker.logger,
	}
}

func (r *electionRepository) Save(ctx context.Context, e *domain.Election) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryElection := `
		INSERT INTO elections (id, title, question, voting_type, max_selections, eligibility, status,
		                       scheduled_start, scheduled_end, hidden, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.ExecContext(ctx, queryElection,
		e.ID, e.Title, e.Question, string(e.VotingType), e.MaxSelections, string(e.Eligibility), string(e.Status),
		e.ScheduledStart, e.ScheduledEnd, e.Hidden, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return classify(r.logger, "failed to insert election", err)
	}

	queryAnswer := `
		INSERT INTO election_answers (election_id, id, position, text)
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, queryAnswer)
	if err != nil {
		return fmt.Errorf("failed to prepare answer statement: %w", err)
	}
	defer stmt.Close()

	for i, a := range e.Answers {
		if _, err := stmt.ExecContext(ctx, e.ID, a.ID, i, a.Text); err != nil {
			return classify(r.logger, "failed to insert answer", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classify(r.logger, "failed to commit transaction", err)
	}
	return nil
}

func (r *electionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Election, error) {
	e, err := loadElection(ctx, r.db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(domain.ReasonElectionNotFound)
		}
		return nil, classify(r.logger, "failed to get election", err)
	}
	return e, nil
}

// loadElection reads an election with its answers. A missing row returns sql.ErrNoRows.
func loadElection(ctx context.Context, q querier, id uuid.UUID) (*domain.Election, error) {
	query := `SELECT ` + electionColumns + ` FROM elections WHERE id = $1`

	var e domain.Election
	if err := scanElection(q.QueryRowContext(ctx, query, id), &e); err != nil {
		return nil, err
	}

	answers, err := fetchAnswers(ctx, q, e.ID)
	if err != nil {
		return nil, err
	}
	e.Answers = answers
	return &e, nil
}

func (r *electionRepository) List(ctx context.Context, includeArchived bool) ([]*domain.Election, error) {
	query := `
		SELECT ` + electionColumns + `
		FROM elections
		WHERE $1 OR status <> 'archived'
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, includeArchived)
	if err != nil {
		return nil, classify(r.logger, "failed to list elections", err)
	}
	defer rows.Close()

	var elections []*domain.Election
	for rows.Next() {
		var e domain.Election
		if err := scanElection(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating elections: %w", err)
	}
	rows.Close()

	for _, e := range elections {
		answers, err := fetchAnswers(ctx, r.db, e.ID)
		if err != nil {
			return nil, classify(r.logger, "failed to get answers", err)
		}
		e.Answers = answers
	}
	return elections, nil
}

func (r *electionRepository) Update(ctx context.Context, id uuid.UUID, fn func(e *domain.Election) error) (*domain.Election, error) {
	var updated *domain.Election
	err := r.locker.run(ctx, id, func(ctx context.Context, tx *sql.Tx, e *domain.Election) error {
		if e == nil {
			return domain.NotFound(domain.ReasonElectionNotFound)
		}
		if err := fn(e); err != nil {
			return err
		}

		query := `
			UPDATE elections
			SET status = $2, hidden = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`
		if err := tx.QueryRowContext(ctx, query, id, string(e.Status), e.Hidden).Scan(&e.UpdatedAt); err != nil {
			return fmt.Errorf("failed to update election: %w", err)
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func scanElection(row rowScanner, e *domain.Election) error {
	var votingType, eligibility, status string
	err := row.Scan(
		&e.ID, &e.Title, &e.Question, &votingType, &e.MaxSelections, &eligibility, &status,
		&e.ScheduledStart, &e.ScheduledEnd, &e.Hidden, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	e.VotingType = domain.VotingType(votingType)
	e.Eligibility = domain.Eligibility(eligibility)
	e.Status = domain.Status(status)
	return nil
}

func fetchAnswers(ctx context.Context, q querier, electionID uuid.UUID) ([]domain.Answer, error) {
	query := `
		SELECT id, text
		FROM election_answers
		WHERE election_id = $1
		ORDER BY position
	`
	rows, err := q.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get election answers: %w", err)
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.Text); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating answers: %w", err)
	}
	return answers, nil
}
