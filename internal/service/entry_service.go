package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/bracket"
	"github.com/AdamBeresnev/creature-arena/internal/combat"
	"github.com/AdamBeresnev/creature-arena/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type EntryService struct {
	db           *sqlx.DB
	store        *store.TournamentStore
	participants *store.ParticipantStore
	catalog      combat.MoveCatalog
	now          func() time.Time
}

func NewEntryService(db *sqlx.DB, store *store.TournamentStore, participants *store.ParticipantStore, catalog combat.MoveCatalog) *EntryService {
	return &EntryService{
		db:           db,
		store:        store,
		participants: participants,
		catalog:      catalog,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RegisterEntry adds a participant's roster to a tournament that is still
// open for registration.
func (s *EntryService) RegisterEntry(ctx context.Context, tournamentID, participantID uuid.UUID, roster combat.Roster) (*bracket.Entry, error) {
	if err := combat.ValidateRoster(roster, s.catalog); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, notFound(err, "tournament")
	}
	if tournament.Status != bracket.TournamentRegistration || !s.now().Before(tournament.StartTime) {
		return nil, fmt.Errorf("%w: registration is closed", ErrValidation)
	}

	if _, err := s.participants.GetParticipantTx(ctx, tx, participantID); err != nil {
		return nil, notFound(err, "participant")
	}

	exists, err := s.store.HasEntryTx(ctx, tx, tournamentID, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check entry: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: participant is already registered", ErrValidation)
	}

	count, err := s.store.CountEntriesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	if count >= tournament.MaxPlayers {
		return nil, fmt.Errorf("%w: tournament is full", ErrValidation)
	}

	entry := &bracket.Entry{
		ID:            uuid.New(),
		TournamentID:  tournamentID,
		ParticipantID: participantID,
		Roster:        roster,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateEntry(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	slog.Info("entry registered", "tournament_id", tournamentID, "entry_id", entry.ID, "participant_id", participantID)
	return entry, tx.Commit()
}

// WithdrawEntry removes an entry. Only allowed during registration.
func (s *EntryService) WithdrawEntry(ctx context.Context, tournamentID, entryID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return notFound(err, "tournament")
	}
	if tournament.Status != bracket.TournamentRegistration {
		return fmt.Errorf("%w: entries can only be withdrawn during registration", ErrValidation)
	}

	ok, err := s.store.DeleteEntryTx(ctx, tx, tournamentID, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: entry", ErrNotFound)
	}

	slog.Info("entry withdrawn", "tournament_id", tournamentID, "entry_id", entryID)
	return tx.Commit()
}
