package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/bracket"
	"github.com/AdamBeresnev/creature-arena/internal/participant"
	"github.com/AdamBeresnev/creature-arena/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ParticipantService struct {
	db    *sqlx.DB
	store *store.ParticipantStore
}

func NewParticipantService(db *sqlx.DB, store *store.ParticipantStore) *ParticipantService {
	return &ParticipantService{db: db, store: store}
}

type ParticipantData struct {
	Participant *participant.Participant
	Badges      []bracket.Badge
}

func (s *ParticipantService) CreateParticipant(ctx context.Context, name string) (*participant.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	p := &participant.Participant{
		ID:        uuid.New(),
		Name:      name,
		Rating:    participant.DefaultRating,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}
	return p, nil
}

func (s *ParticipantService) GetParticipant(ctx context.Context, id uuid.UUID) (*ParticipantData, error) {
	p, err := s.store.GetParticipant(ctx, id)
	if err != nil {
		return nil, notFound(err, "participant")
	}

	badges, err := s.store.GetBadges(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get badges: %w", err)
	}

	return &ParticipantData{Participant: p, Badges: badges}, nil
}
