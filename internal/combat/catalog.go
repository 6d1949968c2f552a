package combat

import "slices"

type MoveCatalog interface {
	Move(name string) (Move, bool)
}

// StaticCatalog is a MoveCatalog keyed by move name.
type StaticCatalog map[string]Move

func (c StaticCatalog) Move(name string) (Move, bool) {
	m, ok := c[name]
	return m, ok
}

func NewStaticCatalog(moves ...Move) StaticCatalog {
	c := make(StaticCatalog, len(moves))
	for _, m := range moves {
		c[m.Name] = m
	}
	return c
}

var DefaultMoves = NewStaticCatalog(
	Move{Name: "Tackle", Damage: 5, StaminaCost: 5, Type: Normal},
	Move{Name: "Bite", Damage: 7, StaminaCost: 12, Type: Normal},
	Move{Name: "Headbutt", Damage: 9, StaminaCost: 20, Type: Normal},
	Move{Name: "Slam", Damage: 11, StaminaCost: 28, Type: Normal},
	Move{Name: "Ember", Damage: 7, StaminaCost: 15, Type: Fire},
	Move{Name: "Flame Burst", Damage: 14, StaminaCost: 35, Type: Fire},
	Move{Name: "Water Jet", Damage: 7, StaminaCost: 15, Type: Water},
	Move{Name: "Tidal Wave", Damage: 14, StaminaCost: 35, Type: Water},
	Move{Name: "Vine Lash", Damage: 7, StaminaCost: 15, Type: Grass},
	Move{Name: "Thorn Storm", Damage: 14, StaminaCost: 35, Type: Grass},
	Move{Name: "Spark", Damage: 7, StaminaCost: 15, Type: Electric},
	Move{Name: "Thunderclap", Damage: 14, StaminaCost: 35, Type: Electric},
	Move{Name: "Rock Throw", Damage: 7, StaminaCost: 15, Type: Earth},
	Move{Name: "Quake", Damage: 14, StaminaCost: 35, Type: Earth},
	Move{Name: "Gust", Damage: 7, StaminaCost: 15, Type: Air},
	Move{Name: "Cyclone", Damage: 14, StaminaCost: 35, Type: Air},
)

type Strategy string

const (
	Aggressive Strategy = "aggressive"
	Balanced   Strategy = "balanced"
	Defensive  Strategy = "defensive"
)

// StrategyCatalog supplies the move pools used to assemble AI combatants.
type StrategyCatalog interface {
	Strategies() []Strategy
	MovePool(s Strategy, t Type) []string
}

type staticStrategies struct {
	light map[Type]string
	heavy map[Type]string
}

var DefaultStrategies StrategyCatalog = staticStrategies{
	light: map[Type]string{
		Normal:   "Bite",
		Fire:     "Ember",
		Water:    "Water Jet",
		Grass:    "Vine Lash",
		Electric: "Spark",
		Earth:    "Rock Throw",
		Air:      "Gust",
	},
	heavy: map[Type]string{
		Normal:   "Slam",
		Fire:     "Flame Burst",
		Water:    "Tidal Wave",
		Grass:    "Thorn Storm",
		Electric: "Thunderclap",
		Earth:    "Quake",
		Air:      "Cyclone",
	},
}

func (s staticStrategies) Strategies() []Strategy {
	return []Strategy{Aggressive, Balanced, Defensive}
}

// MovePool returns MaxActiveMoves distinct moves for a strategy and type.
func (s staticStrategies) MovePool(strategy Strategy, t Type) []string {
	light, heavy := s.light[t], s.heavy[t]
	var pool []string
	switch strategy {
	case Aggressive:
		pool = []string{heavy, light, "Slam"}
	case Defensive:
		pool = []string{light, "Tackle", "Bite"}
	default:
		pool = []string{light, heavy, "Tackle"}
	}
	return distinctMoves(pool, "Headbutt", "Tackle", "Bite", "Slam")
}

// distinctMoves replaces repeats in pool with the first unused spare.
func distinctMoves(pool []string, spares ...string) []string {
	seen := make(map[string]bool, len(pool))
	out := make([]string, 0, len(pool))
	for _, name := range pool {
		if seen[name] {
			for _, spare := range spares {
				if !seen[spare] && !slices.Contains(pool, spare) {
					name = spare
					break
				}
			}
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
