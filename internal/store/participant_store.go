package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/bracket"
	"github.com/AdamBeresnev/creature-arena/internal/participant"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ParticipantStore struct {
	db *sqlx.DB
}

const (
	getParticipantQuery    = "SELECT * FROM participants WHERE id = ?"
	createParticipantQuery = `
		INSERT INTO participants (id, name, rating, coins, created_at) VALUES
		(:id, :name, :rating, :coins, :created_at)
	`
	createRatingChangeQuery = `
		INSERT INTO rating_changes (id, participant_id, source, reference_id, rating_before, delta, created_at) VALUES
		(:id, :participant_id, :source, :reference_id, :rating_before, :delta, :created_at)
	`
	upsertBadgeQuery = `
		INSERT INTO badges (participant_id, theme, level, updated_at) VALUES (?, ?, 1, ?)
		ON CONFLICT (participant_id, theme) DO UPDATE SET
		level = level + 1,
		updated_at = excluded.updated_at
	`
)

func NewParticipantStore(db *sqlx.DB) *ParticipantStore {
	return &ParticipantStore{db: db}
}

func (s *ParticipantStore) CreateParticipant(ctx context.Context, p *participant.Participant) error {
	_, err := s.db.NamedExecContext(ctx, createParticipantQuery, p)
	return err
}

func (s *ParticipantStore) GetParticipant(ctx context.Context, id uuid.UUID) (*participant.Participant, error) {
	var p participant.Participant
	err := s.db.GetContext(ctx, &p, getParticipantQuery, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ParticipantStore) GetParticipantTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*participant.Participant, error) {
	var p participant.Participant
	err := tx.GetContext(ctx, &p, getParticipantQuery, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddRatingTx applies the change as an increment and records it in the
// rating history. It returns sql.ErrNoRows for an unknown participant.
func (s *ParticipantStore) AddRatingTx(ctx context.Context, tx *sqlx.Tx, change *participant.RatingChange) error {
	res, err := tx.ExecContext(ctx, "UPDATE participants SET rating = rating + ? WHERE id = ?", change.Delta, change.ParticipantID)
	ok, err := affectedOne(res, err)
	if err != nil {
		return err
	}
	if !ok {
		return sql.ErrNoRows
	}

	_, err = tx.NamedExecContext(ctx, createRatingChangeQuery, change)
	return err
}

func (s *ParticipantStore) GetRatingChanges(ctx context.Context, participantID uuid.UUID) ([]participant.RatingChange, error) {
	var changes []participant.RatingChange
	err := s.db.SelectContext(ctx, &changes, "SELECT * FROM rating_changes WHERE participant_id = ? ORDER BY created_at ASC", participantID)
	return changes, err
}

func (s *ParticipantStore) AddCoinsTx(ctx context.Context, tx *sqlx.Tx, participantID uuid.UUID, coins int) error {
	res, err := tx.ExecContext(ctx, "UPDATE participants SET coins = coins + ? WHERE id = ?", coins, participantID)
	ok, err := affectedOne(res, err)
	if err != nil {
		return err
	}
	if !ok {
		return sql.ErrNoRows
	}
	return nil
}

// UpsertBadgeTx grants a level 1 badge or levels up an existing one.
func (s *ParticipantStore) UpsertBadgeTx(ctx context.Context, tx *sqlx.Tx, participantID uuid.UUID, theme string, now time.Time) error {
	_, err := tx.ExecContext(ctx, upsertBadgeQuery, participantID, theme, now)
	return err
}

func (s *ParticipantStore) GetBadges(ctx context.Context, participantID uuid.UUID) ([]bracket.Badge, error) {
	var badges []bracket.Badge
	err := s.db.SelectContext(ctx, &badges, "SELECT * FROM badges WHERE participant_id = ? ORDER BY theme ASC", participantID)
	return badges, err
}
