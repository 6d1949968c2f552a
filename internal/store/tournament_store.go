package store

import (
	"context"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, name, theme, status, max_players, total_rounds, current_round, prize, start_time, created_at)
        VALUES (:id, :name, :theme, :status, :max_players, :total_rounds, :current_round, :prize, :start_time, :created_at)`, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := s.db.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := tx.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

// GetActiveTournaments returns tournaments the bracket tick may have work for.
func (s *TournamentStore) GetActiveTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments WHERE status IN (?, ?) ORDER BY start_time ASC",
		bracket.TournamentRegistration, bracket.TournamentInProgress)
	return tournaments, err
}

// UpdateTournamentStatusTx moves a tournament from one status to another. It
// reports false when the tournament was no longer in the expected status.
func (s *TournamentStore) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, from, to bracket.TournamentStatus, completedAt *time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ?, completed_at = ? WHERE id = ? AND status = ?", to, completedAt, id, from)
	return affectedOne(res, err)
}

// StartTournamentTx moves a tournament from registration into round 1.
func (s *TournamentStore) StartTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, totalRounds int) (bool, error) {
	res, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ?, total_rounds = ?, current_round = 1 WHERE id = ? AND status = ?",
		bracket.TournamentInProgress, totalRounds, id, bracket.TournamentRegistration)
	return affectedOne(res, err)
}

// AdvanceRoundTx bumps current_round only if it still equals fromRound.
func (s *TournamentStore) AdvanceRoundTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, fromRound int) (bool, error) {
	res, err := tx.ExecContext(ctx, "UPDATE tournaments SET current_round = current_round + 1 WHERE id = ? AND current_round = ? AND status = ?",
		id, fromRound, bracket.TournamentInProgress)
	return affectedOne(res, err)
}

func (s *TournamentStore) CreateEntry(ctx context.Context, tx *sqlx.Tx, entry *bracket.Entry) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO entries (id, tournament_id, participant_id, roster, created_at)
            VALUES (:id, :tournament_id, :participant_id, :roster, :created_at)`, entry)
	return err
}

func (s *TournamentStore) CountEntriesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM entries WHERE tournament_id = ?", tournamentID)
	return count, err
}

func (s *TournamentStore) HasEntryTx(ctx context.Context, tx *sqlx.Tx, tournamentID, participantID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM entries WHERE tournament_id = ? AND participant_id = ?)", tournamentID, participantID)
	return exists, err
}

func (s *TournamentStore) DeleteEntryTx(ctx context.Context, tx *sqlx.Tx, tournamentID, entryID uuid.UUID) (bool, error) {
	res, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE id = ? AND tournament_id = ?", entryID, tournamentID)
	return affectedOne(res, err)
}

func (s *TournamentStore) GetEntries(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Entry, error) {
	var entries []bracket.Entry
	err := s.db.SelectContext(ctx, &entries, "SELECT * FROM entries WHERE tournament_id = ? ORDER BY bracket_position ASC, created_at ASC, id ASC", tournamentID)
	return entries, err
}

func (s *TournamentStore) GetEntriesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Entry, error) {
	var entries []bracket.Entry
	err := tx.SelectContext(ctx, &entries, "SELECT * FROM entries WHERE tournament_id = ? ORDER BY bracket_position ASC, created_at ASC, id ASC", tournamentID)
	return entries, err
}

func (s *TournamentStore) GetEntry(ctx context.Context, id uuid.UUID) (*bracket.Entry, error) {
	var entry bracket.Entry
	err := s.db.GetContext(ctx, &entry, "SELECT * FROM entries WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetByeEntriesTx returns entries that sat out the given round, in bracket order.
func (s *TournamentStore) GetByeEntriesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, round int) ([]bracket.Entry, error) {
	var entries []bracket.Entry
	err := tx.SelectContext(ctx, &entries, "SELECT * FROM entries WHERE tournament_id = ? AND bye_round = ? ORDER BY bracket_position ASC", tournamentID, round)
	return entries, err
}

func (s *TournamentStore) SetBracketPositionTx(ctx context.Context, tx *sqlx.Tx, entryID uuid.UUID, position int) error {
	_, err := tx.ExecContext(ctx, "UPDATE entries SET bracket_position = ? WHERE id = ?", position, entryID)
	return err
}

func (s *TournamentStore) SetByeRoundTx(ctx context.Context, tx *sqlx.Tx, entryID uuid.UUID, round int) error {
	_, err := tx.ExecContext(ctx, "UPDATE entries SET bye_round = ? WHERE id = ?", round, entryID)
	return err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, tournament_id, round_number, match_order, entry_1_id, entry_2_id, created_at)
		VALUES (:id, :tournament_id, :round_number, :match_order, :entry_1_id, :entry_2_id, :created_at)`, matches)
	return err
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, "SELECT * FROM matches WHERE tournament_id = ? ORDER BY round_number ASC, match_order ASC", tournamentID)
	return matches, err
}

func (s *TournamentStore) GetRoundMatches(ctx context.Context, tournamentID uuid.UUID, round int) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, "SELECT * FROM matches WHERE tournament_id = ? AND round_number = ? ORDER BY match_order ASC", tournamentID, round)
	return matches, err
}

func (s *TournamentStore) GetRoundMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, round int) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := tx.SelectContext(ctx, &matches, "SELECT * FROM matches WHERE tournament_id = ? AND round_number = ? ORDER BY match_order ASC", tournamentID, round)
	return matches, err
}

func (s *TournamentStore) GetMatch(ctx context.Context, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	err := s.db.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// CompleteMatchTx records the result of a match that has not been decided yet.
func (s *TournamentStore) CompleteMatchTx(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) (bool, error) {
	res, err := tx.NamedExecContext(ctx, `UPDATE matches SET winner_entry_id = :winner_entry_id, results = :results, completed_at = :completed_at
		WHERE id = :id AND completed_at IS NULL`, match)
	return affectedOne(res, err)
}

func (s *TournamentStore) CreateRewards(ctx context.Context, tx *sqlx.Tx, rewards []bracket.Reward) error {
	if len(rewards) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO rewards (id, tournament_id, participant_id, placement, coins, rating_bonus, created_at)
		VALUES (:id, :tournament_id, :participant_id, :placement, :coins, :rating_bonus, :created_at)`, rewards)
	return err
}

func (s *TournamentStore) GetRewards(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Reward, error) {
	var rewards []bracket.Reward
	err := s.db.SelectContext(ctx, &rewards, "SELECT * FROM rewards WHERE tournament_id = ? ORDER BY coins DESC, participant_id ASC", tournamentID)
	return rewards, err
}

// PurgeFinishedTx deletes matches and entries of terminal tournaments that
// finished before cutoff. The tournament rows and rewards are kept.
func (s *TournamentStore) PurgeFinishedTx(ctx context.Context, tx *sqlx.Tx, cutoff time.Time) (int64, error) {
	const finished = `SELECT id FROM tournaments WHERE status IN (?, ?) AND completed_at IS NOT NULL AND completed_at < ?`

	if _, err := tx.ExecContext(ctx, "DELETE FROM matches WHERE tournament_id IN ("+finished+")",
		bracket.TournamentCompleted, bracket.TournamentCancelled, cutoff); err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE tournament_id IN ("+finished+")",
		bracket.TournamentCompleted, bracket.TournamentCancelled, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
