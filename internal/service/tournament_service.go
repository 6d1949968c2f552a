package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/bracket"
	"github.com/AdamBeresnev/creature-arena/internal/combat"
	"github.com/AdamBeresnev/creature-arena/internal/store"
	"github.com/AdamBeresnev/creature-arena/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RewardConfig scales placement rewards. Percentages apply to the tournament prize.
type RewardConfig struct {
	RunnerUpPct   int
	SemifinalPct  int
	Participation int

	ChampionBonus  int
	RunnerUpBonus  int
	SemifinalBonus int
}

type TournamentService struct {
	db           *sqlx.DB
	store        *store.TournamentStore
	participants *store.ParticipantStore
	queue        *store.QueueStore
	matches      *MatchService
	rewards      RewardConfig
	now          func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	// held for the duration of one ProcessTournaments run
	tick sync.Mutex
}

func NewTournamentService(
	db *sqlx.DB,
	store *store.TournamentStore,
	participants *store.ParticipantStore,
	queue *store.QueueStore,
	matches *MatchService,
	rewards RewardConfig,
	rng *rand.Rand,
) *TournamentService {
	return &TournamentService{
		db:           db,
		store:        store,
		participants: participants,
		queue:        queue,
		matches:      matches,
		rewards:      rewards,
		rng:          rng,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type TournamentInput struct {
	Name       string
	Theme      string
	MaxPlayers int
	Prize      int
	StartTime  time.Time
}

type TournamentData struct {
	Tournament *bracket.Tournament
	Entries    []bracket.Entry
	Matches    []bracket.Match
	Bracket    bracket.BracketView
	Rewards    []bracket.Reward
}

func (s *TournamentService) CreateTournament(ctx context.Context, input TournamentInput) (*bracket.Tournament, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !bracket.IsPowerOfTwo(input.MaxPlayers) || input.MaxPlayers < bracket.MinPlayers || input.MaxPlayers > bracket.MaxPlayers {
		return nil, fmt.Errorf("%w: max players must be a power of two between %d and %d", ErrValidation, bracket.MinPlayers, bracket.MaxPlayers)
	}
	if _, ok := combat.ConditionFor(input.Theme); !ok {
		return nil, fmt.Errorf("%w: unknown theme %q", ErrValidation, input.Theme)
	}
	if input.Prize < 0 {
		return nil, fmt.Errorf("%w: prize cannot be negative", ErrValidation)
	}

	now := s.now()
	if input.StartTime.IsZero() {
		input.StartTime = now
	}

	tournament := &bracket.Tournament{
		ID:          uuid.New(),
		Name:        input.Name,
		Theme:       input.Theme,
		Status:      bracket.TournamentRegistration,
		MaxPlayers:  input.MaxPlayers,
		TotalRounds: bracket.RoundsFor(input.MaxPlayers),
		Prize:       input.Prize,
		StartTime:   input.StartTime.UTC(),
		CreatedAt:   now,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	slog.Info("tournament created", "tournament_id", tournament.ID, "theme", tournament.Theme, "max_players", tournament.MaxPlayers)
	return tournament, tx.Commit()
}

func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, notFound(err, "tournament")
	}

	entries, err := s.store.GetEntries(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}

	matches, err := s.store.GetMatches(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	rewards, err := s.store.GetRewards(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get rewards: %w", err)
	}

	return &TournamentData{
		Tournament: tournament,
		Entries:    entries,
		Matches:    matches,
		Bracket:    bracket.PrepareBracketView(entries, matches),
		Rewards:    rewards,
	}, nil
}

// AdvanceTournamentTick moves one tournament forward as far as it can go right
// now. Calling it when nothing is ready is a no-op. It waits for a running
// bracket tick to finish first.
func (s *TournamentService) AdvanceTournamentTick(ctx context.Context, id uuid.UUID) error {
	s.tick.Lock()
	defer s.tick.Unlock()
	return s.advanceTournament(ctx, id)
}

// advanceTournament expects the caller to hold s.tick.
func (s *TournamentService) advanceTournament(ctx context.Context, id uuid.UUID) error {
	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return notFound(err, "tournament")
	}
	if tournament.Status.Terminal() {
		return nil
	}

	switch tournament.Status {
	case bracket.TournamentRegistration:
		if s.now().Before(tournament.StartTime) {
			return nil
		}
		return s.startTournament(ctx, tournament)
	case bracket.TournamentInProgress:
		return s.playRound(ctx, tournament)
	default:
		return nil
	}
}

// ProcessTournaments runs one bracket tick over every active tournament. A
// failing tournament is logged and does not stop the others.
func (s *TournamentService) ProcessTournaments(ctx context.Context) error {
	if !s.tick.TryLock() {
		slog.Warn("bracket tick already running, skipping")
		return nil
	}
	defer s.tick.Unlock()

	tournaments, err := s.store.GetActiveTournaments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tournaments: %w", err)
	}

	var errs []error
	for _, t := range tournaments {
		if err := s.advanceTournament(ctx, t.ID); err != nil {
			slog.Error("tournament tick failed", "tournament_id", t.ID, "error", err)
			errs = append(errs, fmt.Errorf("tournament %s: %w", t.ID, err))
		}
	}

	slog.Info("bracket tick finished", "tournaments", len(tournaments), "failed", len(errs))
	return errors.Join(errs...)
}

// CleanupExpired drops the entries and matches of tournaments that finished
// more than maxAge ago, and completed queue entries of the same age.
func (s *TournamentService) CleanupExpired(ctx context.Context, maxAge time.Duration) error {
	cutoff := s.now().Add(-maxAge)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	entries, err := s.store.PurgeFinishedTx(ctx, tx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge tournaments: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	queued, err := s.queue.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge queue entries: %w", err)
	}

	slog.Info("retention cleanup finished", "cutoff", cutoff, "entries", entries, "queue_entries", queued)
	return nil
}

func (s *TournamentService) startTournament(ctx context.Context, tournament *bracket.Tournament) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	entries, err := s.store.GetEntriesTx(ctx, tx, tournament.ID)
	if err != nil {
		return fmt.Errorf("failed to get entries: %w", err)
	}

	if len(entries) < 2 {
		ok, err := s.store.UpdateTournamentStatusTx(ctx, tx, tournament.ID, bracket.TournamentRegistration, bracket.TournamentCancelled, utils.Ptr(s.now()))
		if err != nil {
			return fmt.Errorf("failed to cancel tournament: %w", err)
		}
		if !ok {
			return nil
		}
		slog.Info("tournament cancelled", "tournament_id", tournament.ID, "entries", len(entries))
		return tx.Commit()
	}

	ok, err := s.generateBracketTx(ctx, tx, tournament.ID, entries)
	if err != nil || !ok {
		return err
	}
	return tx.Commit()
}

// playRound resolves the current round's open matches, then advances.
func (s *TournamentService) playRound(ctx context.Context, tournament *bracket.Tournament) error {
	matches, err := s.store.GetRoundMatches(ctx, tournament.ID, tournament.CurrentRound)
	if err != nil {
		return fmt.Errorf("failed to get round matches: %w", err)
	}

	for _, m := range matches {
		if m.IsComplete() {
			continue
		}
		if _, err := s.matches.ResolveMatch(ctx, tournament, m); err != nil {
			if errors.Is(err, ErrValidation) || errors.Is(err, ErrInvariant) {
				slog.Warn("skipping match", "match_id", m.ID, "tournament_id", tournament.ID, "error", err)
				continue
			}
			return fmt.Errorf("failed to resolve match %s: %w", m.ID, err)
		}
	}

	return s.advanceRound(ctx, tournament.ID, tournament.CurrentRound)
}
