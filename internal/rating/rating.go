package rating

import "math"

// K is the Elo K-factor used by every caller.
const K = 32

// Delta returns the Elo change for a player against opponent. Both sides of a
// match call it with their own pre-match snapshot, so order does not matter.
func Delta(player, opponent int, won bool, k int) int {
	expected := Expected(player, opponent)

	actual := 0.0
	if won {
		actual = 1.0
	}

	return int(math.Round(float64(k) * (actual - expected)))
}

// Expected is the probability player beats opponent.
func Expected(player, opponent int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(opponent-player)/400))
}
