package battle

import (
	"fmt"
	"math"

	"github.com/AdamBeresnev/creature-arena/internal/combat"
)

// Ticks after which a bout is decided on remaining HP.
const MaxTicks = 100

type EventKind string

const (
	EventAttack  EventKind = "attack"
	EventRest    EventKind = "rest"
	EventFaint   EventKind = "faint"
	EventVictory EventKind = "victory"
	EventTimeout EventKind = "timeout"
)

type Event struct {
	Tick    int           `json:"tick"`
	Kind    EventKind     `json:"kind"`
	Side    int           `json:"side"`
	Actor   string        `json:"actor"`
	Move    string        `json:"move,omitempty"`
	Damage  int           `json:"damage,omitempty"`
	Effect  combat.Effect `json:"effect,omitempty"`
	Message string        `json:"message"`
}

// Snapshot is the state of both sides at the end of a tick, index 0 is side 1.
type Snapshot struct {
	Tick    int    `json:"tick"`
	HP      [2]int `json:"hp"`
	Stamina [2]int `json:"stamina"`
}

type Outcome struct {
	Winner    int        `json:"winner"`
	Names     [2]string  `json:"names"`
	Ticks     int        `json:"ticks"`
	TimedOut  bool       `json:"timed_out,omitempty"`
	Events    []Event    `json:"events"`
	Snapshots []Snapshot `json:"snapshots"`
}

type fighter struct {
	side  int
	c     *combat.Combatant
	stats combat.Stats
}

// Resolve simulates one bout between c1 and c2. Both combatants are reset
// from their stat blocks first; the only side effect is the returned log.
func Resolve(c1, c2 *combat.Combatant, cond *combat.Condition) Outcome {
	f := [2]*fighter{newFighter(1, c1, cond), newFighter(2, c2, cond)}
	out := Outcome{Names: [2]string{c1.Name, c2.Name}}

	for tick := 1; tick <= MaxTicks; tick++ {
		out.Ticks = tick
		for _, x := range f {
			x.c.Stamina = min(x.c.Stamina+combat.StaminaRegen, combat.MaxStamina)
		}

		// Both sides commit before anything lands.
		picks := [2]*combat.Move{selectMove(f[0].c), selectMove(f[1].c)}

		for _, i := range strikeOrder(f[0], f[1]) {
			attacker, defender := f[i], f[1-i]
			if !attacker.c.Alive() {
				continue
			}
			mv := picks[i]
			if mv == nil {
				out.Events = append(out.Events, Event{
					Tick:    tick,
					Kind:    EventRest,
					Side:    attacker.side,
					Actor:   attacker.c.Name,
					Message: fmt.Sprintf("%s is catching its breath", attacker.c.Name),
				})
				continue
			}

			attacker.c.Stamina -= mv.StaminaCost
			dmg, mult := Damage(*mv, attacker.stats, defender.stats, defender.c.Type, cond)
			defender.c.HP = max(defender.c.HP-dmg, 0)
			out.Events = append(out.Events, attackEvent(tick, attacker, defender, *mv, dmg, mult))

			if !defender.c.Alive() {
				out.Events = append(out.Events,
					Event{
						Tick:    tick,
						Kind:    EventFaint,
						Side:    defender.side,
						Actor:   defender.c.Name,
						Message: fmt.Sprintf("%s fainted", defender.c.Name),
					},
					Event{
						Tick:    tick,
						Kind:    EventVictory,
						Side:    attacker.side,
						Actor:   attacker.c.Name,
						Message: fmt.Sprintf("%s wins", attacker.c.Name),
					},
				)
				out.Winner = attacker.side
				return out
			}
		}

		out.Snapshots = append(out.Snapshots, Snapshot{
			Tick:    tick,
			HP:      [2]int{f[0].c.HP, f[1].c.HP},
			Stamina: [2]int{f[0].c.Stamina, f[1].c.Stamina},
		})
	}

	out.TimedOut = true
	out.Winner = timeoutWinner(f[0], f[1])
	w := f[out.Winner-1]
	out.Events = append(out.Events, Event{
		Tick:    out.Ticks,
		Kind:    EventTimeout,
		Side:    w.side,
		Actor:   w.c.Name,
		Message: fmt.Sprintf("time is up, %s wins with %d HP left", w.c.Name, w.c.HP),
	})
	return out
}

// Damage computes the hit of move from attacker on defender:
// floor(power * atk/50 * 50/def * atkSpeed/defSpeed * effectiveness), at least 1.
func Damage(move combat.Move, attacker, defender combat.Stats, defenderType combat.Type, cond *combat.Condition) (int, float64) {
	mult := combat.Effectiveness(move.Type, defenderType)
	power := cond.MovePower(move)

	// The 50s cancel out; dividing once keeps whole-number results exact.
	num := power * float64(attacker.Attack) * float64(attacker.Speed) * mult
	den := float64(defender.Defense) * float64(defender.Speed)
	dmg := int(math.Floor(num/den + 1e-9))
	if dmg < 1 {
		dmg = 1
	}
	return dmg, mult
}

func newFighter(side int, c *combat.Combatant, cond *combat.Condition) *fighter {
	stats := cond.ApplyStats(c.Stats)
	c.HP = stats.HP
	c.Stamina = combat.MaxStamina
	return &fighter{side: side, c: c, stats: stats}
}

// selectMove picks the hardest-hitting affordable move; the earliest declared
// wins ties. Nil means nothing is affordable.
func selectMove(c *combat.Combatant) *combat.Move {
	var best *combat.Move
	for i := range c.Moves {
		m := &c.Moves[i]
		if m.StaminaCost > c.Stamina {
			continue
		}
		if best == nil || m.Damage > best.Damage {
			best = m
		}
	}
	return best
}

// strikeOrder returns fighter indexes, faster first. Side 1 goes first on equal speed.
func strikeOrder(a, b *fighter) [2]int {
	if b.stats.Speed > a.stats.Speed {
		return [2]int{1, 0}
	}
	return [2]int{0, 1}
}

func timeoutWinner(a, b *fighter) int {
	switch {
	case a.c.HP != b.c.HP:
		if a.c.HP > b.c.HP {
			return a.side
		}
		return b.side
	case a.c.Stamina != b.c.Stamina:
		if a.c.Stamina > b.c.Stamina {
			return a.side
		}
		return b.side
	case b.stats.Speed > a.stats.Speed:
		return b.side
	default:
		return a.side
	}
}

func attackEvent(tick int, attacker, defender *fighter, mv combat.Move, dmg int, mult float64) Event {
	effect := combat.EffectOf(mult)
	msg := fmt.Sprintf("%s used %s on %s for %d damage", attacker.c.Name, mv.Name, defender.c.Name, dmg)
	switch effect {
	case combat.EffectSuperEffective:
		msg += ", it's super effective"
	case combat.EffectNotVeryEffective:
		msg += ", it's not very effective"
	}
	return Event{
		Tick:    tick,
		Kind:    EventAttack,
		Side:    attacker.side,
		Actor:   attacker.c.Name,
		Move:    mv.Name,
		Damage:  dmg,
		Effect:  effect,
		Message: msg,
	}
}
