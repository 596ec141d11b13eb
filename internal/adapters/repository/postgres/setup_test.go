package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vncsmyrnk/elections/internal/core/domain"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("elections"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, connStr, PoolConfig{MaxOpenConns: 32})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	return db
}

func seedElection(t *testing.T, db *sql.DB, mutate func(e *domain.Election)) *domain.Election {
	t.Helper()

	now := time.Now().UTC()
	e := &domain.Election{
		ID:            uuid.New(),
		Title:         "Annual vote",
		Question:      "Approve the accounts?",
		VotingType:    domain.VotingTypeSingleChoice,
		MaxSelections: 1,
		Answers:       []domain.Answer{{ID: "yes", Text: "Yes"}, {ID: "no", Text: "No"}},
		Eligibility:   domain.EligibilityMembers,
		Status:        domain.StatusPublished,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if mutate != nil {
		mutate(e)
	}
	require.NoError(t, NewElectionRepository(db, 0, nil).Save(context.Background(), e))
	return e
}
