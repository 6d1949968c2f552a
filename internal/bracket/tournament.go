package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentRegistration TournamentStatus = "registration"
	TournamentInProgress   TournamentStatus = "in_progress"
	TournamentCompleted    TournamentStatus = "completed"
	TournamentCancelled    TournamentStatus = "cancelled"
)

func (s TournamentStatus) Terminal() bool {
	return s == TournamentCompleted || s == TournamentCancelled
}

const (
	MinPlayers = 4
	MaxPlayers = 128
)

type Tournament struct {
	ID           uuid.UUID        `db:"id"`
	Name         string           `db:"name"`
	Theme        string           `db:"theme"`
	Status       TournamentStatus `db:"status"`
	MaxPlayers   int              `db:"max_players"`
	TotalRounds  int              `db:"total_rounds"`
	CurrentRound int              `db:"current_round"`
	Prize        int              `db:"prize"`
	StartTime    time.Time        `db:"start_time"`
	CreatedAt    time.Time        `db:"created_at"`
	CompletedAt  *time.Time       `db:"completed_at"`
}

// Badge is the themed trophy awarded to a champion; winning the same theme again levels it up.
type Badge struct {
	ParticipantID uuid.UUID `db:"participant_id"`
	Theme         string    `db:"theme"`
	Level         int       `db:"level"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type Placement string

const (
	PlacementChampion     Placement = "champion"
	PlacementRunnerUp     Placement = "runner_up"
	PlacementSemifinalist Placement = "semifinalist"
	PlacementParticipant  Placement = "participant"
)

type Reward struct {
	ID            uuid.UUID `db:"id"`
	TournamentID  uuid.UUID `db:"tournament_id"`
	ParticipantID uuid.UUID `db:"participant_id"`
	Placement     Placement `db:"placement"`
	Coins         int       `db:"coins"`
	RatingBonus   int       `db:"rating_bonus"`
	CreatedAt     time.Time `db:"created_at"`
}
