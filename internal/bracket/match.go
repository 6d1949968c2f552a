package bracket

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

type Match struct {
	ID           uuid.UUID `db:"id"`
	TournamentID uuid.UUID `db:"tournament_id"`

	// Position in the tournament for reconstructing the bracket
	RoundNumber int `db:"round_number"`
	MatchOrder  int `db:"match_order"`

	Entry1ID *uuid.UUID `db:"entry_1_id"`
	Entry2ID *uuid.UUID `db:"entry_2_id"`

	WinnerEntryID *uuid.UUID         `db:"winner_entry_id"`
	Results       types.NullJSONText `db:"results"`
	CompletedAt   *time.Time         `db:"completed_at"`

	CreatedAt time.Time `db:"created_at"`
}

func (m *Match) IsComplete() bool {
	return m.CompletedAt != nil
}

// LoserEntryID is nil until the match is decided.
func (m *Match) LoserEntryID() *uuid.UUID {
	if m.WinnerEntryID == nil || m.Entry1ID == nil || m.Entry2ID == nil {
		return nil
	}
	if *m.WinnerEntryID == *m.Entry1ID {
		return m.Entry2ID
	}
	return m.Entry1ID
}
