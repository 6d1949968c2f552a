package bracket

import (
	"math"

	"github.com/google/uuid"
)

// RoundsFor is ceil(log2(n)), the number of rounds n entrants need to produce a champion.
func RoundsFor(n int) int {
	if n <= 1 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(n))))
}

func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// PairEntrants pairs sequential entrants. With an odd count the last one gets the bye.
func PairEntrants(entrants []uuid.UUID) ([][2]uuid.UUID, *uuid.UUID) {
	pairs := make([][2]uuid.UUID, 0, len(entrants)/2)
	for i := 0; i+1 < len(entrants); i += 2 {
		pairs = append(pairs, [2]uuid.UUID{entrants[i], entrants[i+1]})
	}

	if len(entrants)%2 == 1 {
		bye := entrants[len(entrants)-1]
		return pairs, &bye
	}
	return pairs, nil
}
