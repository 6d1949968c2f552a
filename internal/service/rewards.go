package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/creature-arena/internal/bracket"
	"github.com/AdamBeresnev/creature-arena/internal/participant"
	"github.com/AdamBeresnev/creature-arena/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Badge theme for tournaments without a themed condition.
const openTheme = "open"

// finalize completes the tournament, awards the champion's badge and pays out
// placement rewards. finalRound is the round the champion won.
func (s *TournamentService) finalize(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, finalRound int, champion uuid.UUID) (bool, error) {
	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return false, notFound(err, "tournament")
	}

	now := s.now()
	ok, err := s.store.UpdateTournamentStatusTx(ctx, tx, tournamentID, bracket.TournamentInProgress, bracket.TournamentCompleted, utils.Ptr(now))
	if err != nil {
		return false, fmt.Errorf("failed to complete tournament: %w", err)
	}
	if !ok {
		return false, nil
	}

	placements, err := s.placements(ctx, tx, tournamentID, finalRound, champion)
	if err != nil {
		return false, err
	}

	entries, err := s.store.GetEntriesTx(ctx, tx, tournamentID)
	if err != nil {
		return false, fmt.Errorf("failed to get entries: %w", err)
	}

	rewards := make([]bracket.Reward, 0, len(entries))
	var championParticipant uuid.UUID
	for _, e := range entries {
		placement, ok := placements[e.ID]
		if !ok {
			placement = bracket.PlacementParticipant
		}
		if placement == bracket.PlacementChampion {
			championParticipant = e.ParticipantID
		}

		coins, bonus := s.rewardFor(tournament.Prize, placement)
		rewards = append(rewards, bracket.Reward{
			ID:            uuid.New(),
			TournamentID:  tournamentID,
			ParticipantID: e.ParticipantID,
			Placement:     placement,
			Coins:         coins,
			RatingBonus:   bonus,
			CreatedAt:     now,
		})
	}

	if err := s.store.CreateRewards(ctx, tx, rewards); err != nil {
		return false, fmt.Errorf("failed to create rewards: %w", err)
	}

	for _, r := range rewards {
		if r.Coins > 0 {
			if err := s.participants.AddCoinsTx(ctx, tx, r.ParticipantID, r.Coins); err != nil {
				return false, fmt.Errorf("failed to pay reward: %w", err)
			}
		}
		if r.RatingBonus > 0 {
			if err := s.applyRatingBonus(ctx, tx, tournamentID, r); err != nil {
				return false, err
			}
		}
	}

	theme := tournament.Theme
	if theme == "" {
		theme = openTheme
	}
	if err := s.participants.UpsertBadgeTx(ctx, tx, championParticipant, theme, now); err != nil {
		return false, fmt.Errorf("failed to award badge: %w", err)
	}

	slog.Info("tournament completed", "tournament_id", tournamentID, "champion_entry_id", champion, "rewards", len(rewards))
	return true, nil
}

// placements derives the podium from the last two rounds. Entries missing from
// the result finished as plain participants.
func (s *TournamentService) placements(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, finalRound int, champion uuid.UUID) (map[uuid.UUID]bracket.Placement, error) {
	placements := map[uuid.UUID]bracket.Placement{champion: bracket.PlacementChampion}

	final, err := s.store.GetRoundMatchesTx(ctx, tx, tournamentID, finalRound)
	if err != nil {
		return nil, fmt.Errorf("failed to get final matches: %w", err)
	}
	for _, m := range final {
		if loser := m.LoserEntryID(); loser != nil {
			placements[*loser] = bracket.PlacementRunnerUp
		}
	}

	if finalRound < 2 {
		return placements, nil
	}

	semis, err := s.store.GetRoundMatchesTx(ctx, tx, tournamentID, finalRound-1)
	if err != nil {
		return nil, fmt.Errorf("failed to get semifinal matches: %w", err)
	}
	for _, m := range semis {
		if loser := m.LoserEntryID(); loser != nil {
			placements[*loser] = bracket.PlacementSemifinalist
		}
	}
	return placements, nil
}

func (s *TournamentService) rewardFor(prize int, placement bracket.Placement) (coins, ratingBonus int) {
	switch placement {
	case bracket.PlacementChampion:
		return prize, s.rewards.ChampionBonus
	case bracket.PlacementRunnerUp:
		return prize * s.rewards.RunnerUpPct / 100, s.rewards.RunnerUpBonus
	case bracket.PlacementSemifinalist:
		return prize * s.rewards.SemifinalPct / 100, s.rewards.SemifinalBonus
	default:
		return s.rewards.Participation, 0
	}
}

func (s *TournamentService) applyRatingBonus(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, r bracket.Reward) error {
	p, err := s.participants.GetParticipantTx(ctx, tx, r.ParticipantID)
	if err != nil {
		return notFound(err, "participant")
	}

	err = s.participants.AddRatingTx(ctx, tx, &participant.RatingChange{
		ID:            uuid.New(),
		ParticipantID: r.ParticipantID,
		Source:        participant.SourceTournament,
		ReferenceID:   tournamentID,
		RatingBefore:  p.Rating,
		Delta:         r.RatingBonus,
		CreatedAt:     r.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to apply rating bonus: %w", err)
	}
	return nil
}
