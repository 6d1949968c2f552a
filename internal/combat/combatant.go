package combat

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	MaxStamina     = 100
	StaminaRegen   = 10
	MaxActiveMoves = 3
	RosterSize     = 3
)

var ErrInvalidRoster = errors.New("invalid roster")

type Stat string

const (
	StatHP       Stat = "hp"
	StatAttack   Stat = "attack"
	StatDefense  Stat = "defense"
	StatInstinct Stat = "instinct"
	StatSpeed    Stat = "speed"
)

type Stats struct {
	HP       int `json:"hp"`
	Attack   int `json:"attack"`
	Defense  int `json:"defense"`
	Instinct int `json:"instinct"`
	Speed    int `json:"speed"`
}

type Move struct {
	Name        string `json:"name"`
	Damage      int    `json:"damage"`
	StaminaCost int    `json:"stamina_cost"`
	Type        Type   `json:"type"`
}

// Member is the roster snapshot a Combatant is built from.
type Member struct {
	Name  string   `json:"name"`
	Type  Type     `json:"type"`
	Stats Stats    `json:"stats"`
	Moves []string `json:"moves"`
}

// Roster is stored as a JSON column on entries and queue entries.
type Roster []Member

func (r Roster) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *Roster) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Roster", src)
	}
	return json.Unmarshal(data, r)
}

// Combatant is one creature for the duration of a single bout.
type Combatant struct {
	Name    string
	Type    Type
	Stats   Stats
	Moves   []Move
	HP      int
	Stamina int
}

func (c *Combatant) Alive() bool {
	return c.HP > 0
}

// NewCombatant resolves a member's move names against the catalog. Only the
// first MaxActiveMoves known moves are active in a bout.
func NewCombatant(m Member, catalog MoveCatalog) (*Combatant, error) {
	if err := ValidateMember(m, catalog); err != nil {
		return nil, err
	}

	moves := make([]Move, 0, MaxActiveMoves)
	for _, name := range m.Moves {
		if len(moves) == MaxActiveMoves {
			break
		}
		mv, _ := catalog.Move(name)
		moves = append(moves, mv)
	}

	return &Combatant{
		Name:    m.Name,
		Type:    m.Type,
		Stats:   m.Stats,
		Moves:   moves,
		HP:      m.Stats.HP,
		Stamina: MaxStamina,
	}, nil
}

func ValidateMember(m Member, catalog MoveCatalog) error {
	if m.Name == "" {
		return fmt.Errorf("%w: member name is required", ErrInvalidRoster)
	}
	if !m.Type.Valid() {
		return fmt.Errorf("%w: %s has unknown type %q", ErrInvalidRoster, m.Name, m.Type)
	}
	s := m.Stats
	if s.HP <= 0 || s.Attack <= 0 || s.Defense <= 0 || s.Instinct < 0 || s.Speed <= 0 {
		return fmt.Errorf("%w: %s has non-positive stats", ErrInvalidRoster, m.Name)
	}
	if len(m.Moves) == 0 {
		return fmt.Errorf("%w: %s knows no moves", ErrInvalidRoster, m.Name)
	}
	for _, name := range m.Moves {
		if _, ok := catalog.Move(name); !ok {
			return fmt.Errorf("%w: %s knows unknown move %q", ErrInvalidRoster, m.Name, name)
		}
	}
	return nil
}

// ValidateRoster checks team size and every member.
func ValidateRoster(r Roster, catalog MoveCatalog) error {
	if len(r) != RosterSize {
		return fmt.Errorf("%w: expected %d members, got %d", ErrInvalidRoster, RosterSize, len(r))
	}
	for _, m := range r {
		if err := ValidateMember(m, catalog); err != nil {
			return err
		}
	}
	return nil
}
