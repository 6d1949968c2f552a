package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/creature-arena/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// GenerateBracket shuffles the entries, assigns bracket positions and creates
// the round 1 matches, moving the tournament into progress.
func (s *TournamentService) GenerateBracket(ctx context.Context, tournamentID uuid.UUID, entries []bracket.Entry) error {
	if len(entries) < 2 {
		return fmt.Errorf("%w: a bracket needs at least 2 entries, got %d", ErrValidation, len(entries))
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ok, err := s.generateBracketTx(ctx, tx, tournamentID, entries)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: tournament %s is not in registration", ErrInvariant, tournamentID)
	}
	return tx.Commit()
}

func (s *TournamentService) generateBracketTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, entries []bracket.Entry) (bool, error) {
	order := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		if e.TournamentID != tournamentID {
			return false, fmt.Errorf("%w: entry %s belongs to another tournament", ErrValidation, e.ID)
		}
		order[i] = e.ID
	}

	s.rngMu.Lock()
	s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	s.rngMu.Unlock()

	totalRounds := bracket.RoundsFor(len(order))
	ok, err := s.store.StartTournamentTx(ctx, tx, tournamentID, totalRounds)
	if err != nil {
		return false, fmt.Errorf("failed to start tournament: %w", err)
	}
	if !ok {
		return false, nil
	}

	for pos, id := range order {
		if err := s.store.SetBracketPositionTx(ctx, tx, id, pos); err != nil {
			return false, fmt.Errorf("failed to assign bracket position: %w", err)
		}
	}

	if err := s.createRound(ctx, tx, tournamentID, 1, order); err != nil {
		return false, err
	}

	slog.Info("bracket generated", "tournament_id", tournamentID, "entries", len(order), "total_rounds", totalRounds)
	return true, nil
}

// advanceRound pairs the next round once every match of round is decided, or
// finalizes the tournament when a single entrant is left. It is a no-op while
// the round is still open or after it has already advanced.
func (s *TournamentService) advanceRound(ctx context.Context, tournamentID uuid.UUID, round int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	matches, err := s.store.GetRoundMatchesTx(ctx, tx, tournamentID, round)
	if err != nil {
		return fmt.Errorf("failed to get round matches: %w", err)
	}
	for _, m := range matches {
		if !m.IsComplete() {
			return nil
		}
	}

	byes, err := s.store.GetByeEntriesTx(ctx, tx, tournamentID, round)
	if err != nil {
		return fmt.Errorf("failed to get bye entries: %w", err)
	}

	// Bye entrants go first so the same entrant does not sit out twice in a row
	entrants := make([]uuid.UUID, 0, len(byes)+len(matches))
	for _, e := range byes {
		entrants = append(entrants, e.ID)
	}
	for _, m := range matches {
		entrants = append(entrants, *m.WinnerEntryID)
	}

	switch len(entrants) {
	case 0:
		return fmt.Errorf("%w: round %d of tournament %s has no entrants", ErrInvariant, round, tournamentID)
	case 1:
		ok, err := s.finalize(ctx, tx, tournamentID, round, entrants[0])
		if err != nil || !ok {
			return err
		}
		return tx.Commit()
	}

	ok, err := s.store.AdvanceRoundTx(ctx, tx, tournamentID, round)
	if err != nil {
		return fmt.Errorf("failed to advance round: %w", err)
	}
	if !ok {
		return nil
	}

	if err := s.createRound(ctx, tx, tournamentID, round+1, entrants); err != nil {
		return err
	}

	slog.Info("round advanced", "tournament_id", tournamentID, "round", round+1, "entrants", len(entrants))
	return tx.Commit()
}

// createRound pairs entrants sequentially. With an odd count the last one sits
// the round out and is carried into the next.
func (s *TournamentService) createRound(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, round int, entrants []uuid.UUID) error {
	pairs, bye := bracket.PairEntrants(entrants)

	now := s.now()
	matches := make([]bracket.Match, 0, len(pairs))
	for i, p := range pairs {
		matches = append(matches, bracket.Match{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			RoundNumber:  round,
			MatchOrder:   i,
			Entry1ID:     &p[0],
			Entry2ID:     &p[1],
			CreatedAt:    now,
		})
	}

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return fmt.Errorf("failed to create round %d matches: %w", round, err)
	}

	if bye != nil {
		if err := s.store.SetByeRoundTx(ctx, tx, *bye, round); err != nil {
			return fmt.Errorf("failed to record bye: %w", err)
		}
	}
	return nil
}
