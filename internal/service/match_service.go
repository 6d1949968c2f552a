package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/battle"
	"github.com/AdamBeresnev/creature-arena/internal/bracket"
	"github.com/AdamBeresnev/creature-arena/internal/combat"
	"github.com/AdamBeresnev/creature-arena/internal/store"
	"github.com/AdamBeresnev/creature-arena/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

type MatchService struct {
	db      *sqlx.DB
	store   *store.TournamentStore
	catalog combat.MoveCatalog
	now     func() time.Time
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, catalog combat.MoveCatalog) *MatchService {
	return &MatchService{db: db, store: store, catalog: catalog, now: func() time.Time { return time.Now().UTC() }}
}

type MatchData struct {
	Match  *bracket.Match
	Entry1 *bracket.Entry
	Entry2 *bracket.Entry
}

func (s *MatchService) GetMatchData(ctx context.Context, matchID uuid.UUID) (*MatchData, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, notFound(err, "match")
	}

	var entry1, entry2 *bracket.Entry
	if match.Entry1ID != nil {
		e, err := s.store.GetEntry(ctx, *match.Entry1ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get entry 1: %w", err)
		}
		entry1 = e
	}
	if match.Entry2ID != nil {
		e, err := s.store.GetEntry(ctx, *match.Entry2ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get entry 2: %w", err)
		}
		entry2 = e
	}

	return &MatchData{
		Match:  match,
		Entry1: entry1,
		Entry2: entry2,
	}, nil
}

// ResolveMatch plays the best-of-3 for an undecided bracket match and records
// the winner. It reports false when the match was already decided.
func (s *MatchService) ResolveMatch(ctx context.Context, tournament *bracket.Tournament, match bracket.Match) (bool, error) {
	if match.IsComplete() {
		return false, nil
	}

	cond, ok := combat.ConditionFor(tournament.Theme)
	if !ok {
		return false, fmt.Errorf("%w: unknown theme %q", ErrValidation, tournament.Theme)
	}

	if match.Entry1ID == nil {
		return false, fmt.Errorf("%w: match %s has no first entry", ErrInvariant, match.ID)
	}
	entry1, err := s.store.GetEntry(ctx, *match.Entry1ID)
	if err != nil {
		return false, notFound(err, "entry 1")
	}

	match.WinnerEntryID = match.Entry1ID
	if match.Entry2ID != nil {
		entry2, err := s.store.GetEntry(ctx, *match.Entry2ID)
		if err != nil {
			return false, notFound(err, "entry 2")
		}

		res, err := battle.Series(entry1.Roster, entry2.Roster, s.catalog, cond)
		if err != nil {
			return false, fmt.Errorf("%w: match %s: %w", ErrValidation, match.ID, err)
		}
		if res.Winner == 2 {
			match.WinnerEntryID = match.Entry2ID
		}

		b, err := json.Marshal(res)
		if err != nil {
			return false, fmt.Errorf("failed to encode results: %w", err)
		}
		match.Results = types.NullJSONText{JSONText: b, Valid: true}
	}
	match.CompletedAt = utils.Ptr(s.now())

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	ok, err = s.store.CompleteMatchTx(ctx, tx, &match)
	if err != nil {
		return false, fmt.Errorf("failed to complete match: %w", err)
	}
	if !ok {
		slog.Info("match already decided", "match_id", match.ID)
		return false, nil
	}

	slog.Info("match resolved", "match_id", match.ID, "tournament_id", tournament.ID, "round", match.RoundNumber, "winner_entry_id", *match.WinnerEntryID)
	return true, tx.Commit()
}
