package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/combat"
	"github.com/AdamBeresnev/creature-arena/internal/participant"
	"github.com/AdamBeresnev/creature-arena/internal/queue"
	"github.com/AdamBeresnev/creature-arena/internal/rating"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enqueue(t *testing.T, env *testEnv, snapshot int) (*participant.Participant, uuid.UUID) {
	t.Helper()
	p := env.newParticipant(t, "challenger")
	id, err := env.queueProc.Enqueue(context.Background(), p.ID, snapshot, testRoster())
	require.NoError(t, err)
	return p, id
}

func countQueueMatches(t *testing.T, env *testEnv) int {
	t.Helper()
	var n int
	require.NoError(t, env.db.Get(&n, "SELECT COUNT(*) FROM queue_matches"))
	return n
}

func TestMatchmakingWindow(t *testing.T) {
	testCases := []struct {
		waited   time.Duration
		expected int
	}{
		{0, 100},
		{10 * time.Second, 150},
		{1500 * time.Millisecond, 107},
		{80 * time.Second, 500},
		{time.Hour, 500},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, testMatchmaking.Window(tc.waited), "waited=%s", tc.waited)
	}
}

func TestEnqueue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, id := enqueue(t, env, 1000)

	entry, err := env.queue.GetEntry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusWaiting, entry.Status)
	assert.Equal(t, 1000, entry.Rating)
	assert.Equal(t, p.ID, entry.ParticipantID)

	_, err = env.queueProc.Enqueue(ctx, p.ID, 1000, testRoster())
	assert.ErrorIs(t, err, ErrValidation, "one waiting entry per participant")

	_, err = env.queueProc.Enqueue(ctx, uuid.New(), 1000, testRoster())
	assert.ErrorIs(t, err, ErrNotFound)

	bad := testRoster()
	bad[1].Moves = []string{"Hyper Beam"}
	_, err = env.queueProc.Enqueue(ctx, env.newParticipant(t, "cheater").ID, 1000, bad)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProcessTick_PairsWithinWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p1, id1 := enqueue(t, env, 1000)
	env.advance(time.Second)
	p2, id2 := enqueue(t, env, 1050)

	require.NoError(t, env.queueProc.ProcessTick(ctx))

	e1, err := env.queue.GetEntry(ctx, id1)
	require.NoError(t, err)
	e2, err := env.queue.GetEntry(ctx, id2)
	require.NoError(t, err)

	assert.Equal(t, queue.StatusCompleted, e1.Status)
	assert.Equal(t, queue.StatusCompleted, e2.Status)
	require.NotNil(t, e1.MatchedWith)
	require.NotNil(t, e2.MatchedWith)
	assert.Equal(t, id2, *e1.MatchedWith)
	assert.Equal(t, id1, *e2.MatchedWith)
	require.NotNil(t, e1.MatchID)
	assert.Equal(t, *e1.MatchID, *e2.MatchID)

	match, err := env.queue.GetMatch(ctx, *e1.MatchID)
	require.NoError(t, err)
	assert.False(t, match.AIOpponent)
	assert.Equal(t, p1.ID, match.Player1ID, "the older entry is player 1")
	require.NotNil(t, match.Player2ID)
	assert.Equal(t, p2.ID, *match.Player2ID)

	won := match.WinnerSide == 1
	assert.Equal(t, rating.Delta(1000, 1050, won, rating.K), match.Player1Delta)
	assert.Equal(t, rating.Delta(1050, 1000, !won, rating.K), match.Player2Delta)

	var results queueResults
	require.NoError(t, json.Unmarshal(match.Results, &results))
	assert.Len(t, results.Series.Bouts, combat.RosterSize)
	assert.Empty(t, results.Opponent)

	got1, err := env.participants.GetParticipant(ctx, p1.ID)
	require.NoError(t, err)
	got2, err := env.participants.GetParticipant(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, participant.DefaultRating+match.Player1Delta, got1.Rating)
	assert.Equal(t, participant.DefaultRating+match.Player2Delta, got2.Rating)

	require.NoError(t, env.queueProc.ProcessTick(ctx))
	assert.Equal(t, 1, countQueueMatches(t, env), "completed entries are not reconsidered")
}

func TestProcessTick_WindowExpandsWithTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, id1 := enqueue(t, env, 1000)
	_, id2 := enqueue(t, env, 1300)

	require.NoError(t, env.queueProc.ProcessTick(ctx))
	assert.Equal(t, 0, countQueueMatches(t, env))

	env.advance(40 * time.Second)
	require.NoError(t, env.queueProc.ProcessTick(ctx))
	assert.Equal(t, 1, countQueueMatches(t, env))

	e1, err := env.queue.GetEntry(ctx, id1)
	require.NoError(t, err)
	require.NotNil(t, e1.MatchedWith)
	assert.Equal(t, id2, *e1.MatchedWith)
}

func TestProcessTick_WindowUsesScanningEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, veteran := enqueue(t, env, 1000)
	env.advance(50 * time.Second)
	_, newcomer := enqueue(t, env, 1300)

	// The veteran's window is 350, the newcomer's is only 100.
	require.NoError(t, env.queueProc.ProcessTick(ctx))

	e, err := env.queue.GetEntry(ctx, newcomer)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusCompleted, e.Status)
	require.NotNil(t, e.MatchedWith)
	assert.Equal(t, veteran, *e.MatchedWith)
}

func TestProcessTick_FirstCandidateInQueueOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, first := enqueue(t, env, 1000)
	env.advance(time.Second)
	_, second := enqueue(t, env, 1090)
	env.advance(time.Second)
	_, third := enqueue(t, env, 1010)

	require.NoError(t, env.queueProc.ProcessTick(ctx))

	e, err := env.queue.GetEntry(ctx, first)
	require.NoError(t, err)
	require.NotNil(t, e.MatchedWith)
	assert.Equal(t, second, *e.MatchedWith, "first in list order wins over closest rating")

	left, err := env.queue.GetEntry(ctx, third)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusWaiting, left.Status)
}

func TestProcessTick_SkipsUnplayablePairing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, first := enqueue(t, env, 1000)
	env.advance(time.Second)
	_, broken := enqueue(t, env, 1010)
	env.advance(time.Second)
	_, third := enqueue(t, env, 1020)

	_, err := env.db.Exec("UPDATE queue_entries SET roster = '[]' WHERE id = ?", broken)
	require.NoError(t, err)

	require.NoError(t, env.queueProc.ProcessTick(ctx))

	e, err := env.queue.GetEntry(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusCompleted, e.Status)
	require.NotNil(t, e.MatchedWith)
	assert.Equal(t, third, *e.MatchedWith, "the next candidate is tried after an unplayable one")

	left, err := env.queue.GetEntry(ctx, broken)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusWaiting, left.Status)
	assert.Equal(t, 1, countQueueMatches(t, env))
}

func TestProcessTick_AIFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, id := enqueue(t, env, 1000)

	env.advance(59 * time.Second)
	require.NoError(t, env.queueProc.ProcessTick(ctx))
	assert.Equal(t, 0, countQueueMatches(t, env), "still inside the AI timeout")

	env.advance(time.Second)
	require.NoError(t, env.queueProc.ProcessTick(ctx))
	require.NoError(t, env.queueProc.ProcessTick(ctx))
	assert.Equal(t, 1, countQueueMatches(t, env), "AI match happens exactly once")

	entry, err := env.queue.GetEntry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, queue.StatusCompleted, entry.Status)
	assert.Nil(t, entry.MatchedWith)
	require.NotNil(t, entry.MatchID)

	match, err := env.queue.GetMatch(ctx, *entry.MatchID)
	require.NoError(t, err)
	assert.True(t, match.AIOpponent)
	assert.Nil(t, match.Player2ID)
	assert.Zero(t, match.Player2Delta)
	assert.Equal(t, 16, abs(match.Player1Delta), "the AI is rated at the player's snapshot")

	var results queueResults
	require.NoError(t, json.Unmarshal(match.Results, &results))
	assert.Len(t, results.Opponent, combat.RosterSize)

	got, err := env.participants.GetParticipant(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, participant.DefaultRating+match.Player1Delta, got.Rating)

	changes, err := env.participants.GetRatingChanges(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, participant.SourceQueue, changes[0].Source)
	assert.Equal(t, match.ID, changes[0].ReferenceID)

	var total int
	require.NoError(t, env.db.Get(&total, "SELECT COUNT(*) FROM rating_changes"))
	assert.Equal(t, 1, total, "only the real player's rating changes")
}

func TestProcessTick_SkipsWhenAlreadyRunning(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	enqueue(t, env, 1000)
	enqueue(t, env, 1000)

	env.queueProc.tick.Lock()
	require.NoError(t, env.queueProc.ProcessTick(ctx))
	env.queueProc.tick.Unlock()
	assert.Equal(t, 0, countQueueMatches(t, env))

	require.NoError(t, env.queueProc.ProcessTick(ctx))
	assert.Equal(t, 1, countQueueMatches(t, env))
}

func TestQueueProcessor_StartStop(t *testing.T) {
	env := newTestEnv(t)

	assert.False(t, env.queueProc.Running())

	require.NoError(t, env.queueProc.Start())
	require.NoError(t, env.queueProc.Start(), "start is idempotent")
	assert.True(t, env.queueProc.Running())

	env.queueProc.Stop()
	env.queueProc.Stop()
	assert.False(t, env.queueProc.Running())

	require.NoError(t, env.queueProc.Start(), "can restart after stop")
	env.queueProc.Stop()
}
