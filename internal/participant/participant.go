package participant

import (
	"time"

	"github.com/google/uuid"
)

const DefaultRating = 1000

type Participant struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Rating    int       `db:"rating"`
	Coins     int       `db:"coins"`
	CreatedAt time.Time `db:"created_at"`
}

type Source string

const (
	SourceQueue      Source = "queue"
	SourceTournament Source = "tournament"
)

// RatingChange records one increment applied to a participant's rating.
type RatingChange struct {
	ID            uuid.UUID `db:"id"`
	ParticipantID uuid.UUID `db:"participant_id"`
	Source        Source    `db:"source"`
	ReferenceID   uuid.UUID `db:"reference_id"`
	RatingBefore  int       `db:"rating_before"`
	Delta         int       `db:"delta"`
	CreatedAt     time.Time `db:"created_at"`
}
