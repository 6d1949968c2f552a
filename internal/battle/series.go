package battle

import (
	"fmt"

	"github.com/AdamBeresnev/creature-arena/internal/combat"
)

// SeriesResult is a best-of-3: slot i of roster A fights slot i of roster B.
type SeriesResult struct {
	Winner int       `json:"winner"`
	Wins   [2]int    `json:"wins"`
	Bouts  []Outcome `json:"bouts"`
}

// Series plays all three slots, even when the first two already decide it.
func Series(a, b combat.Roster, catalog combat.MoveCatalog, cond *combat.Condition) (SeriesResult, error) {
	if err := combat.ValidateRoster(a, catalog); err != nil {
		return SeriesResult{}, fmt.Errorf("side 1: %w", err)
	}
	if err := combat.ValidateRoster(b, catalog); err != nil {
		return SeriesResult{}, fmt.Errorf("side 2: %w", err)
	}

	res := SeriesResult{Bouts: make([]Outcome, 0, combat.RosterSize)}
	for i := 0; i < combat.RosterSize; i++ {
		out, err := ResolveMembers(a[i], b[i], catalog, cond)
		if err != nil {
			return SeriesResult{}, err
		}
		res.Bouts = append(res.Bouts, out)
		res.Wins[out.Winner-1]++
	}

	res.Winner = 1
	if res.Wins[1] > res.Wins[0] {
		res.Winner = 2
	}
	return res, nil
}

// ResolveMembers builds fresh combatants from two roster snapshots and resolves them.
func ResolveMembers(m1, m2 combat.Member, catalog combat.MoveCatalog, cond *combat.Condition) (Outcome, error) {
	c1, err := combat.NewCombatant(m1, catalog)
	if err != nil {
		return Outcome{}, err
	}
	c2, err := combat.NewCombatant(m2, catalog)
	if err != nil {
		return Outcome{}, err
	}
	return Resolve(c1, c2, cond), nil
}
