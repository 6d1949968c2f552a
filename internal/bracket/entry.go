package bracket

import (
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/combat"
	"github.com/google/uuid"
)

type Entry struct {
	ID            uuid.UUID     `db:"id"`
	TournamentID  uuid.UUID     `db:"tournament_id"`
	ParticipantID uuid.UUID     `db:"participant_id"`
	Roster        combat.Roster `db:"roster"`

	// Assigned when the bracket is generated
	BracketPosition *int `db:"bracket_position"`
	// Round this entry sat out, it joins the next round's pool
	ByeRound *int `db:"bye_round"`

	CreatedAt time.Time `db:"created_at"`
}
