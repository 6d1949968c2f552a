package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/battle"
	"github.com/AdamBeresnev/creature-arena/internal/combat"
	"github.com/AdamBeresnev/creature-arena/internal/participant"
	"github.com/AdamBeresnev/creature-arena/internal/queue"
	"github.com/AdamBeresnev/creature-arena/internal/rating"
	"github.com/AdamBeresnev/creature-arena/internal/scheduler"
	"github.com/AdamBeresnev/creature-arena/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

type MatchmakingConfig struct {
	BaseRange          int
	ExpansionPerSecond float64
	MaxRange           int
	AITimeout          time.Duration
	TickInterval       time.Duration
}

// Window is the rating distance an entry accepts after waiting for waited.
func (c MatchmakingConfig) Window(waited time.Duration) int {
	grown := float64(c.BaseRange) + c.ExpansionPerSecond*waited.Seconds()
	return min(int(math.Floor(grown)), c.MaxRange)
}

type QueueProcessor struct {
	db           *sqlx.DB
	store        *store.QueueStore
	participants *store.ParticipantStore
	ai           *AIOpponentGenerator
	catalog      combat.MoveCatalog
	cfg          MatchmakingConfig
	now          func() time.Time

	// held for the duration of one tick
	tick sync.Mutex

	mu    sync.Mutex
	sched *scheduler.Scheduler
}

func NewQueueProcessor(
	db *sqlx.DB,
	store *store.QueueStore,
	participants *store.ParticipantStore,
	ai *AIOpponentGenerator,
	catalog combat.MoveCatalog,
	cfg MatchmakingConfig,
) *QueueProcessor {
	return &QueueProcessor{
		db:           db,
		store:        store,
		participants: participants,
		ai:           ai,
		catalog:      catalog,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// queueResults is the replay stored on a queue match.
type queueResults struct {
	Series   battle.SeriesResult `json:"series"`
	Opponent combat.Roster       `json:"opponent,omitempty"`
}

// Start runs ProcessTick on the configured interval. Calling it while running is a no-op.
func (p *QueueProcessor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sched != nil {
		return nil
	}

	sched := scheduler.New()
	if err := sched.Every("matchmaking", p.cfg.TickInterval, p.ProcessTick); err != nil {
		return err
	}
	sched.Start()
	p.sched = sched

	slog.Info("matchmaking started", "interval", p.cfg.TickInterval)
	return nil
}

// Stop halts the ticker and waits for an in-flight tick. Safe to call when stopped.
func (p *QueueProcessor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sched == nil {
		return
	}
	p.sched.Stop()
	p.sched = nil
	slog.Info("matchmaking stopped")
}

func (p *QueueProcessor) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sched != nil
}

// Enqueue puts a participant in the ranked queue with a rating snapshot.
func (p *QueueProcessor) Enqueue(ctx context.Context, participantID uuid.UUID, ratingSnapshot int, roster combat.Roster) (uuid.UUID, error) {
	if err := combat.ValidateRoster(roster, p.catalog); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if _, err := p.participants.GetParticipantTx(ctx, tx, participantID); err != nil {
		return uuid.Nil, notFound(err, "participant")
	}

	waiting, err := p.store.HasWaitingEntryTx(ctx, tx, participantID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to check queue: %w", err)
	}
	if waiting {
		return uuid.Nil, fmt.Errorf("%w: participant is already queued", ErrValidation)
	}

	entry := &queue.Entry{
		ID:            uuid.New(),
		ParticipantID: participantID,
		Rating:        ratingSnapshot,
		Roster:        roster,
		Status:        queue.StatusWaiting,
		QueuedAt:      p.now(),
	}
	if err := p.store.CreateEntry(ctx, tx, entry); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create queue entry: %w", err)
	}

	slog.Info("participant queued", "participant_id", participantID, "entry_id", entry.ID, "rating", ratingSnapshot)
	return entry.ID, tx.Commit()
}

// ProcessTick pairs waiting entries by rating and falls back to an AI
// opponent for entries that waited past the timeout. A persistence failure
// abandons the rest of the tick.
func (p *QueueProcessor) ProcessTick(ctx context.Context) error {
	if !p.tick.TryLock() {
		slog.Warn("matchmaking tick already running, skipping")
		return nil
	}
	defer p.tick.Unlock()

	entries, err := p.store.GetWaitingEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to get waiting entries: %w", err)
	}

	now := p.now()
	done := make(map[uuid.UUID]bool, len(entries))
	var humans, bots int

	for i := range entries {
		entry := &entries[i]
		if done[entry.ID] {
			continue
		}

		waited := now.Sub(entry.QueuedAt)
		window := p.cfg.Window(waited)

		// A pairing that cannot be played is skipped and the next candidate tried.
		rejected := map[uuid.UUID]bool{}
		matched := false
		for !matched {
			opponent := p.findOpponent(entries, i, done, rejected, window)
			if opponent == nil {
				break
			}
			err := p.resolveHuman(ctx, entry, opponent, now)
			if errors.Is(err, ErrValidation) {
				slog.Warn("skipping queue match", "entry_id", entry.ID, "opponent_entry_id", opponent.ID, "error", err)
				rejected[opponent.ID] = true
				continue
			}
			if err != nil {
				return err
			}
			done[entry.ID], done[opponent.ID] = true, true
			humans++
			matched = true
		}
		if matched {
			continue
		}

		if waited < p.cfg.AITimeout {
			continue
		}

		err := p.resolveAI(ctx, entry, now)
		if errors.Is(err, ErrValidation) {
			slog.Warn("skipping AI match", "entry_id", entry.ID, "error", err)
			continue
		}
		if err != nil {
			return err
		}
		done[entry.ID] = true
		bots++
	}

	slog.Info("matchmaking tick finished", "waiting", len(entries), "human_matches", humans, "ai_matches", bots)
	return nil
}

// findOpponent returns the first other unmatched entry within window of
// entries[i]'s rating. Only the scanning entry's window is checked.
func (p *QueueProcessor) findOpponent(entries []queue.Entry, i int, done, rejected map[uuid.UUID]bool, window int) *queue.Entry {
	for j := range entries {
		if j == i || done[entries[j].ID] || rejected[entries[j].ID] {
			continue
		}
		if abs(entries[j].Rating-entries[i].Rating) <= window {
			return &entries[j]
		}
	}
	return nil
}

func (p *QueueProcessor) resolveHuman(ctx context.Context, a, b *queue.Entry, now time.Time) error {
	res, err := battle.Series(a.Roster, b.Roster, p.catalog, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	won := res.Winner == 1
	match := &queue.Match{
		ID:           uuid.New(),
		Player1ID:    a.ParticipantID,
		Player2ID:    &b.ParticipantID,
		WinnerSide:   res.Winner,
		Player1Delta: rating.Delta(a.Rating, b.Rating, won, rating.K),
		Player2Delta: rating.Delta(b.Rating, a.Rating, !won, rating.K),
		CreatedAt:    now,
	}
	if match.Results, err = encodeResults(queueResults{Series: res}); err != nil {
		return err
	}

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := p.store.CreateMatchTx(ctx, tx, match); err != nil {
		return fmt.Errorf("failed to create queue match: %w", err)
	}

	for _, side := range []struct {
		entry, other *queue.Entry
		delta        int
	}{
		{a, b, match.Player1Delta},
		{b, a, match.Player2Delta},
	} {
		ok, err := p.store.CompleteEntryTx(ctx, tx, side.entry.ID, &side.other.ID, match.ID, now)
		if err != nil {
			return fmt.Errorf("failed to complete queue entry: %w", err)
		}
		if !ok {
			slog.Info("queue entry already completed", "entry_id", side.entry.ID)
			return nil
		}
		if err := p.applyDelta(ctx, tx, side.entry, match.ID, side.delta, now); err != nil {
			return err
		}
	}

	slog.Info("queue match resolved", "match_id", match.ID, "player_1_id", a.ParticipantID, "player_2_id", b.ParticipantID, "winner_side", res.Winner)
	return tx.Commit()
}

// resolveAI plays the entry against a synthetic roster rated at the player's
// own snapshot. Only the player's rating moves.
func (p *QueueProcessor) resolveAI(ctx context.Context, entry *queue.Entry, now time.Time) error {
	opponent := p.ai.Generate(entry.Roster)

	res, err := battle.Series(entry.Roster, opponent, p.catalog, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	match := &queue.Match{
		ID:           uuid.New(),
		Player1ID:    entry.ParticipantID,
		AIOpponent:   true,
		WinnerSide:   res.Winner,
		Player1Delta: rating.Delta(entry.Rating, entry.Rating, res.Winner == 1, rating.K),
		CreatedAt:    now,
	}
	if match.Results, err = encodeResults(queueResults{Series: res, Opponent: opponent}); err != nil {
		return err
	}

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := p.store.CreateMatchTx(ctx, tx, match); err != nil {
		return fmt.Errorf("failed to create queue match: %w", err)
	}

	ok, err := p.store.CompleteEntryTx(ctx, tx, entry.ID, nil, match.ID, now)
	if err != nil {
		return fmt.Errorf("failed to complete queue entry: %w", err)
	}
	if !ok {
		slog.Info("queue entry already completed", "entry_id", entry.ID)
		return nil
	}

	if err := p.applyDelta(ctx, tx, entry, match.ID, match.Player1Delta, now); err != nil {
		return err
	}

	slog.Info("AI match resolved", "match_id", match.ID, "player_id", entry.ParticipantID, "winner_side", res.Winner)
	return tx.Commit()
}

func (p *QueueProcessor) applyDelta(ctx context.Context, tx *sqlx.Tx, entry *queue.Entry, matchID uuid.UUID, delta int, now time.Time) error {
	err := p.participants.AddRatingTx(ctx, tx, &participant.RatingChange{
		ID:            uuid.New(),
		ParticipantID: entry.ParticipantID,
		Source:        participant.SourceQueue,
		ReferenceID:   matchID,
		RatingBefore:  entry.Rating,
		Delta:         delta,
		CreatedAt:     now,
	})
	if err != nil {
		return fmt.Errorf("failed to apply rating change: %w", err)
	}
	return nil
}

func encodeResults(r queueResults) (types.JSONText, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}
	return types.JSONText(b), nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
