package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/combat"
	"github.com/AdamBeresnev/creature-arena/internal/db"
	"github.com/AdamBeresnev/creature-arena/internal/participant"
	"github.com/AdamBeresnev/creature-arena/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a throwaway SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", db.DSN(filepath.Join(t.TempDir(), "service.db")))
	require.NoError(t, err, "Failed to connect to test DB")
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, "file://../../migrations"), "Failed to apply migrations")
	return database
}

var testRewards = RewardConfig{
	RunnerUpPct:    50,
	SemifinalPct:   25,
	Participation:  10,
	ChampionBonus:  20,
	RunnerUpBonus:  10,
	SemifinalBonus: 5,
}

var testMatchmaking = MatchmakingConfig{
	BaseRange:          100,
	ExpansionPerSecond: 5,
	MaxRange:           500,
	AITimeout:          60 * time.Second,
	TickInterval:       time.Hour,
}

type testEnv struct {
	db           *sqlx.DB
	tournaments  *store.TournamentStore
	participants *store.ParticipantStore
	queue        *store.QueueStore

	tournamentSvc  *TournamentService
	entrySvc       *EntryService
	matchSvc       *MatchService
	participantSvc *ParticipantService
	queueProc      *QueueProcessor

	clock time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := setupTestDB(t)
	env := &testEnv{
		db:           database,
		tournaments:  store.NewTournamentStore(database),
		participants: store.NewParticipantStore(database),
		queue:        store.NewQueueStore(database),
		clock:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return env.clock }

	env.matchSvc = NewMatchService(database, env.tournaments, combat.DefaultMoves)
	env.matchSvc.now = now

	env.tournamentSvc = NewTournamentService(database, env.tournaments, env.participants, env.queue, env.matchSvc, testRewards, NewRand(42))
	env.tournamentSvc.now = now

	env.entrySvc = NewEntryService(database, env.tournaments, env.participants, combat.DefaultMoves)
	env.entrySvc.now = now

	env.participantSvc = NewParticipantService(database, env.participants)

	ai := NewAIOpponentGenerator(combat.DefaultStrategies, 0.1, NewRand(7))
	env.queueProc = NewQueueProcessor(database, env.queue, env.participants, ai, combat.DefaultMoves, testMatchmaking)
	env.queueProc.now = now

	return env
}

func (env *testEnv) advance(d time.Duration) {
	env.clock = env.clock.Add(d)
}

func (env *testEnv) newParticipant(t *testing.T, name string) *participant.Participant {
	t.Helper()
	p, err := env.participantSvc.CreateParticipant(context.Background(), name)
	require.NoError(t, err)
	return p
}

func member(name string, typ combat.Type, hp, atk, def, spd int, moves ...string) combat.Member {
	return combat.Member{
		Name:  name,
		Type:  typ,
		Stats: combat.Stats{HP: hp, Attack: atk, Defense: def, Instinct: 40, Speed: spd},
		Moves: moves,
	}
}

func testRoster() combat.Roster {
	return combat.Roster{
		member("cinder", combat.Fire, 80, 60, 45, 55, "Ember", "Flame Burst", "Tackle"),
		member("brook", combat.Water, 90, 50, 55, 45, "Water Jet", "Tidal Wave", "Bite"),
		member("bramble", combat.Grass, 85, 55, 50, 50, "Vine Lash", "Thorn Storm", "Tackle"),
	}
}
