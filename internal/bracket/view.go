package bracket

import (
	"sort"

	"github.com/google/uuid"
)

// BracketView groups a tournament's matches by round for display.
type BracketView struct {
	Rounds    map[int][]Match `json:"rounds"`
	RoundNums []int           `json:"round_nums"`
	// Entries that sat out each round
	Byes     map[int][]uuid.UUID `json:"byes"`
	EntryMap map[uuid.UUID]Entry `json:"entries"`
}

// PrepareBracketView only reports the latest bye of an entry, since an entry
// stores a single bye round.
func PrepareBracketView(entries []Entry, matches []Match) BracketView {
	entryMap := make(map[uuid.UUID]Entry, len(entries))
	byes := make(map[int][]uuid.UUID)
	for _, e := range entries {
		entryMap[e.ID] = e
		if e.ByeRound != nil {
			byes[*e.ByeRound] = append(byes[*e.ByeRound], e.ID)
		}
	}

	rounds := make(map[int][]Match)
	var roundNums []int
	for _, m := range matches {
		if _, exists := rounds[m.RoundNumber]; !exists {
			roundNums = append(roundNums, m.RoundNumber)
		}
		rounds[m.RoundNumber] = append(rounds[m.RoundNumber], m)
	}

	sort.Ints(roundNums)
	for _, r := range roundNums {
		sort.Slice(rounds[r], func(i, j int) bool {
			return rounds[r][i].MatchOrder < rounds[r][j].MatchOrder
		})
	}

	return BracketView{
		Rounds:    rounds,
		RoundNums: roundNums,
		Byes:      byes,
		EntryMap:  entryMap,
	}
}
