package combat

type Type string

const (
	Normal   Type = "normal"
	Fire     Type = "fire"
	Water    Type = "water"
	Grass    Type = "grass"
	Electric Type = "electric"
	Earth    Type = "earth"
	Air      Type = "air"
)

var AllTypes = []Type{Normal, Fire, Water, Grass, Electric, Earth, Air}

func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Effect string

const (
	EffectNeutral          Effect = ""
	EffectSuperEffective   Effect = "super_effective"
	EffectNotVeryEffective Effect = "not_very_effective"
)

// Multipliers for an attacking move type against a defender's primary type.
// Pairs missing from the chart are neutral.
var typeChart = map[Type]map[Type]float64{
	Fire: {
		Grass: 2.0,
		Air:   2.0,
		Fire:  0.5,
		Water: 0.5,
		Earth: 0.5,
	},
	Water: {
		Fire:  2.0,
		Earth: 2.0,
		Water: 0.5,
		Grass: 0.5,
	},
	Grass: {
		Water: 2.0,
		Earth: 2.0,
		Fire:  0.5,
		Grass: 0.5,
		Air:   0.5,
	},
	Electric: {
		Water:    2.0,
		Air:      2.0,
		Electric: 0.5,
		Grass:    0.5,
		Earth:    0.5,
	},
	Earth: {
		Fire:     2.0,
		Electric: 2.0,
		Grass:    0.5,
		Air:      0.5,
	},
	Air: {
		Grass:    2.0,
		Earth:    2.0,
		Electric: 0.5,
	},
}

// Effectiveness returns the damage multiplier of a moveType hit against defender.
func Effectiveness(moveType, defender Type) float64 {
	if row, ok := typeChart[moveType]; ok {
		if m, ok := row[defender]; ok {
			return m
		}
	}
	return 1.0
}

func EffectOf(multiplier float64) Effect {
	switch {
	case multiplier > 1.0:
		return EffectSuperEffective
	case multiplier < 1.0:
		return EffectNotVeryEffective
	default:
		return EffectNeutral
	}
}
