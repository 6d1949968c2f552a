package combat

// Condition is a tournament-wide battle modifier. Bonuses are whole percentages
// and may be negative.
type Condition struct {
	Theme     string       `json:"theme"`
	TypeBonus map[Type]int `json:"type_bonus,omitempty"`
	StatBonus map[Stat]int `json:"stat_bonus,omitempty"`
}

var conditions = map[string]Condition{
	"inferno_cup": {
		Theme:     "inferno_cup",
		TypeBonus: map[Type]int{Fire: 20, Water: -10},
	},
	"tidal_classic": {
		Theme:     "tidal_classic",
		TypeBonus: map[Type]int{Water: 20},
		StatBonus: map[Stat]int{StatSpeed: -10},
	},
	"iron_league": {
		Theme:     "iron_league",
		StatBonus: map[Stat]int{StatDefense: 25, StatHP: 10},
	},
	"storm_open": {
		Theme:     "storm_open",
		TypeBonus: map[Type]int{Electric: 15, Air: 15},
		StatBonus: map[Stat]int{StatSpeed: 10},
	},
}

// ConditionFor looks up a theme. An empty theme has no condition.
func ConditionFor(theme string) (*Condition, bool) {
	if theme == "" {
		return nil, true
	}
	c, ok := conditions[theme]
	if !ok {
		return nil, false
	}
	return &c, true
}

// ApplyStats scales every stat by its bonus, never dropping below 1.
func (c *Condition) ApplyStats(s Stats) Stats {
	if c == nil {
		return s
	}
	return Stats{
		HP:       scale(s.HP, c.StatBonus[StatHP]),
		Attack:   scale(s.Attack, c.StatBonus[StatAttack]),
		Defense:  scale(s.Defense, c.StatBonus[StatDefense]),
		Instinct: scale(s.Instinct, c.StatBonus[StatInstinct]),
		Speed:    scale(s.Speed, c.StatBonus[StatSpeed]),
	}
}

// MovePower is the move's base damage after the type bonus.
func (c *Condition) MovePower(m Move) float64 {
	if c == nil {
		return float64(m.Damage)
	}
	return float64(m.Damage) * float64(100+c.TypeBonus[m.Type]) / 100
}

func scale(v, pct int) int {
	if pct == 0 {
		return v
	}
	out := v * (100 + pct) / 100
	if out < 1 {
		return 1
	}
	return out
}
