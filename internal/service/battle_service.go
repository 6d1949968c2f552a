package service

import (
	"fmt"

	"github.com/AdamBeresnev/creature-arena/internal/battle"
	"github.com/AdamBeresnev/creature-arena/internal/combat"
)

// BattleService resolves one-off bouts that are not part of a tournament or
// the ranked queue.
type BattleService struct {
	catalog combat.MoveCatalog
}

func NewBattleService(catalog combat.MoveCatalog) *BattleService {
	return &BattleService{catalog: catalog}
}

func (s *BattleService) ResolveBattle(m1, m2 combat.Member, theme string) (battle.Outcome, error) {
	cond, ok := combat.ConditionFor(theme)
	if !ok {
		return battle.Outcome{}, fmt.Errorf("%w: unknown theme %q", ErrValidation, theme)
	}

	out, err := battle.ResolveMembers(m1, m2, s.catalog, cond)
	if err != nil {
		return battle.Outcome{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return out, nil
}
