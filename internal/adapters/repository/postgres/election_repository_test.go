package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/elections/internal/core/domain"
)

func TestElectionRepository(t *testing.T) {
	db := setupDB(t)
	repo := NewElectionRepository(db, 0, nil)
	ctx := context.Background()

	start := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	e := seedElection(t, db, func(e *domain.Election) {
		e.VotingType = domain.VotingTypeMultiChoice
		e.MaxSelections = 2
		e.Answers = []domain.Answer{{ID: "c", Text: "Carol"}, {ID: "a", Text: "Alice"}, {ID: "b", Text: "Bob"}}
		e.ScheduledStart = &start
	})

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Title, got.Title)
	assert.Equal(t, domain.VotingTypeMultiChoice, got.VotingType)
	assert.Equal(t, e.Answers, got.Answers)
	require.NotNil(t, got.ScheduledStart)
	assert.True(t, start.Equal(*got.ScheduledStart))
	assert.Nil(t, got.ScheduledEnd)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)

	updated, err := repo.Update(ctx, e.ID, func(e *domain.Election) error {
		e.Status = domain.StatusArchived
		e.Hidden = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusArchived, updated.Status)

	list, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Hidden)
	assert.Len(t, list[0].Answers, 3)

	_, err = repo.Update(ctx, e.ID, func(e *domain.Election) error {
		return domain.Conflict("nope")
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = repo.Update(ctx, uuid.New(), func(e *domain.Election) error { return nil })
	require.ErrorIs(t, err, domain.ErrNotFound)
}
