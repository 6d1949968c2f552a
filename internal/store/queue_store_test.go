package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/queue"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedQueueEntry(t *testing.T, database *sqlx.DB, store *QueueStore, queuedAt time.Time) *queue.Entry {
	t.Helper()
	p := seedParticipant(t, database, "queued")
	entry := &queue.Entry{
		ID:            uuid.New(),
		ParticipantID: p.ID,
		Rating:        p.Rating,
		Roster:        testRoster(),
		Status:        queue.StatusWaiting,
		QueuedAt:      queuedAt,
	}
	withTx(t, database, func(tx *sqlx.Tx) {
		require.NoError(t, store.CreateEntry(context.Background(), tx, entry))
	})
	return entry
}

func TestWaitingEntriesOldestFirst(t *testing.T) {
	database := setupTestDB(t)
	store := NewQueueStore(database)
	now := time.Now().UTC()

	late := seedQueueEntry(t, database, store, now)
	early := seedQueueEntry(t, database, store, now.Add(-time.Minute))

	waiting, err := store.GetWaitingEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, waiting, 2)
	assert.Equal(t, early.ID, waiting[0].ID)
	assert.Equal(t, late.ID, waiting[1].ID)
	assert.Equal(t, testRoster(), waiting[0].Roster)
}

func TestCompleteEntryOnlyOnce(t *testing.T) {
	database := setupTestDB(t)
	store := NewQueueStore(database)
	ctx := context.Background()
	now := time.Now().UTC()
	entry := seedQueueEntry(t, database, store, now)

	match := &queue.Match{
		ID:           uuid.New(),
		Player1ID:    entry.ParticipantID,
		AIOpponent:   true,
		WinnerSide:   1,
		Player1Delta: 16,
		Results:      types.JSONText(`{}`),
		CreatedAt:    now,
	}

	withTx(t, database, func(tx *sqlx.Tx) {
		exists, err := store.HasWaitingEntryTx(ctx, tx, entry.ParticipantID)
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, store.CreateMatchTx(ctx, tx, match))

		ok, err := store.CompleteEntryTx(ctx, tx, entry.ID, nil, match.ID, now)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.CompleteEntryTx(ctx, tx, entry.ID, nil, match.ID, now)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	fetched, err := store.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusCompleted, fetched.Status)
	require.NotNil(t, fetched.MatchID)
	assert.Equal(t, match.ID, *fetched.MatchID)
	assert.Nil(t, fetched.MatchedWith)

	stored, err := store.GetMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.True(t, stored.AIOpponent)
	assert.Nil(t, stored.Player2ID)

	purged, err := store.DeleteCompletedBefore(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	waiting, err := store.GetWaitingEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, waiting)
}
