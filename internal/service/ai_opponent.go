package service

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/AdamBeresnev/creature-arena/internal/combat"
)

// AIOpponentGenerator builds a synthetic roster scaled to the player's own.
type AIOpponentGenerator struct {
	strategies combat.StrategyCatalog
	// each stat lands within ±variance of the player's roster average
	variance float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewAIOpponentGenerator(strategies combat.StrategyCatalog, variance float64, rng *rand.Rand) *AIOpponentGenerator {
	return &AIOpponentGenerator{strategies: strategies, variance: variance, rng: rng}
}

func (g *AIOpponentGenerator) Generate(player combat.Roster) combat.Roster {
	avg := averageStats(player)

	g.mu.Lock()
	defer g.mu.Unlock()

	strategies := g.strategies.Strategies()
	roster := make(combat.Roster, combat.RosterSize)
	for i := range roster {
		typ := combat.AllTypes[g.rng.IntN(len(combat.AllTypes))]
		strategy := strategies[g.rng.IntN(len(strategies))]

		roster[i] = combat.Member{
			Name: fmt.Sprintf("Wild %s %s", typ, strategy),
			Type: typ,
			Stats: combat.Stats{
				HP:       g.vary(avg.HP, 1),
				Attack:   g.vary(avg.Attack, 1),
				Defense:  g.vary(avg.Defense, 1),
				Instinct: g.vary(avg.Instinct, 0),
				Speed:    g.vary(avg.Speed, 1),
			},
			Moves: g.strategies.MovePool(strategy, typ),
		}
	}
	return roster
}

func (g *AIOpponentGenerator) vary(v, floor int) int {
	factor := 1 + (g.rng.Float64()*2-1)*g.variance
	return max(int(math.Round(float64(v)*factor)), floor)
}

func averageStats(r combat.Roster) combat.Stats {
	if len(r) == 0 {
		return combat.Stats{}
	}

	var sum combat.Stats
	for _, m := range r {
		sum.HP += m.Stats.HP
		sum.Attack += m.Stats.Attack
		sum.Defense += m.Stats.Defense
		sum.Instinct += m.Stats.Instinct
		sum.Speed += m.Stats.Speed
	}

	n := len(r)
	return combat.Stats{
		HP:       sum.HP / n,
		Attack:   sum.Attack / n,
		Defense:  sum.Defense / n,
		Instinct: sum.Instinct / n,
		Speed:    sum.Speed / n,
	}
}
