package queue

import (
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/combat"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusCompleted Status = "completed"
)

// Entry is one player waiting for a ranked match. Rating is the snapshot taken at enqueue time.
type Entry struct {
	ID            uuid.UUID     `db:"id"`
	ParticipantID uuid.UUID     `db:"participant_id"`
	Rating        int           `db:"rating"`
	Roster        combat.Roster `db:"roster"`
	Status        Status        `db:"status"`
	QueuedAt      time.Time     `db:"queued_at"`

	MatchedWith *uuid.UUID `db:"matched_with"`
	MatchID     *uuid.UUID `db:"match_id"`
	CompletedAt *time.Time `db:"completed_at"`
}

// Match is a resolved ranked match. Player2ID is nil when the opponent was synthesized.
type Match struct {
	ID           uuid.UUID      `db:"id"`
	Player1ID    uuid.UUID      `db:"player_1_id"`
	Player2ID    *uuid.UUID     `db:"player_2_id"`
	AIOpponent   bool           `db:"ai_opponent"`
	WinnerSide   int            `db:"winner_side"`
	Player1Delta int            `db:"player_1_delta"`
	Player2Delta int            `db:"player_2_delta"`
	Results      types.JSONText `db:"results"`
	CreatedAt    time.Time      `db:"created_at"`
}
