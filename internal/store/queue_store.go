package store

import (
	"context"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/queue"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type QueueStore struct {
	db *sqlx.DB
}

func NewQueueStore(db *sqlx.DB) *QueueStore {
	return &QueueStore{db: db}
}

func (s *QueueStore) CreateEntry(ctx context.Context, tx *sqlx.Tx, entry *queue.Entry) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO queue_entries (id, participant_id, rating, roster, status, queued_at)
		VALUES (:id, :participant_id, :rating, :roster, :status, :queued_at)`, entry)
	return err
}

func (s *QueueStore) HasWaitingEntryTx(ctx context.Context, tx *sqlx.Tx, participantID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM queue_entries WHERE participant_id = ? AND status = ?)",
		participantID, queue.StatusWaiting)
	return exists, err
}

// GetWaitingEntries returns unmatched entries oldest first.
func (s *QueueStore) GetWaitingEntries(ctx context.Context) ([]queue.Entry, error) {
	var entries []queue.Entry
	err := s.db.SelectContext(ctx, &entries, "SELECT * FROM queue_entries WHERE status = ? ORDER BY queued_at ASC, id ASC", queue.StatusWaiting)
	return entries, err
}

func (s *QueueStore) GetEntry(ctx context.Context, id uuid.UUID) (*queue.Entry, error) {
	var entry queue.Entry
	err := s.db.GetContext(ctx, &entry, "SELECT * FROM queue_entries WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// CompleteEntryTx closes a waiting entry. It reports false when another
// tick already completed it.
func (s *QueueStore) CompleteEntryTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, matchedWith *uuid.UUID, matchID uuid.UUID, now time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, `UPDATE queue_entries SET status = ?, matched_with = ?, match_id = ?, completed_at = ?
		WHERE id = ? AND status = ?`, queue.StatusCompleted, matchedWith, matchID, now, id, queue.StatusWaiting)
	return affectedOne(res, err)
}

func (s *QueueStore) CreateMatchTx(ctx context.Context, tx *sqlx.Tx, match *queue.Match) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO queue_matches (id, player_1_id, player_2_id, ai_opponent, winner_side, player_1_delta, player_2_delta, results, created_at)
		VALUES (:id, :player_1_id, :player_2_id, :ai_opponent, :winner_side, :player_1_delta, :player_2_delta, :results, :created_at)`, match)
	return err
}

func (s *QueueStore) GetMatch(ctx context.Context, id uuid.UUID) (*queue.Match, error) {
	var match queue.Match
	err := s.db.GetContext(ctx, &match, "SELECT * FROM queue_matches WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// DeleteCompletedBefore drops completed queue entries older than cutoff.
func (s *QueueStore) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM queue_entries WHERE status = ? AND completed_at < ?", queue.StatusCompleted, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
