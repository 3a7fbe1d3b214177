package engine

import (
	"sort"

	"github.com/courtline/bracket-engine/models"
)

// seedOrder returns the seeds (1-based) in leaf-slot order for a bracket of
// the given size (a power of two). Adjacent pairs form the first-round
// matchups: seed 1 plays the lowest remaining seed, and recursive halving
// keeps seed 1 and seed 2 apart until the final. For size 8 the order is
// 1,8,4,5,2,7,3,6.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		mirror := 2*len(order) + 1
		grown := make([]int, 0, 2*len(order))
		for _, s := range order {
			grown = append(grown, s, mirror-s)
		}
		order = grown
	}
	return order
}

// nextPowerOfTwo pads n up to the bracket size.
func nextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// snakeGroups distributes seeded entrants across g groups in boustrophedon
// order (1,2,..G,G,..2,1,1,2,...) so aggregate group strength stays
// balanced. Entrants must arrive sorted by seed.
func snakeGroups(seeded []*models.Entrant, g int) [][]*models.Entrant {
	groups := make([][]*models.Entrant, g)
	for i, e := range seeded {
		lap := i / g
		pos := i % g
		if lap%2 == 1 {
			pos = g - 1 - pos
		}
		groups[pos] = append(groups[pos], e)
	}
	return groups
}

// swissStanding is one entrant's position going into a Swiss round.
type swissStanding struct {
	entrant *models.Entrant
	points  int
}

// sortSwissStandings orders entrants for pairing: current tournament points
// descending, ties broken by seed ascending.
func sortSwissStandings(standings []swissStanding) {
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].points != standings[j].points {
			return standings[i].points > standings[j].points
		}
		return standings[i].entrant.Seed < standings[j].entrant.Seed
	})
}

// pairSwiss pairs adjacent entrants from an ordered list while avoiding
// repeat opponents, backtracking when a greedy pairing would force one.
// The caller removes any bye recipient beforehand, so len(ordered) is even.
// Returns ErrUnresolvablePairing when no complete pairing exists; the
// engine reports that to a human operator rather than guessing.
func pairSwiss(ordered []*models.Entrant, played func(a, b int) bool) ([][2]*models.Entrant, error) {
	pairs := make([][2]*models.Entrant, 0, len(ordered)/2)
	if pairSwissRec(ordered, played, &pairs) {
		return pairs, nil
	}
	return nil, ErrUnresolvablePairing
}

func pairSwissRec(remaining []*models.Entrant, played func(a, b int) bool, pairs *[][2]*models.Entrant) bool {
	if len(remaining) == 0 {
		return true
	}
	first := remaining[0]
	for i := 1; i < len(remaining); i++ {
		opponent := remaining[i]
		if played(first.ID, opponent.ID) {
			continue
		}
		rest := make([]*models.Entrant, 0, len(remaining)-2)
		rest = append(rest, remaining[1:i]...)
		rest = append(rest, remaining[i+1:]...)

		*pairs = append(*pairs, [2]*models.Entrant{first, opponent})
		if pairSwissRec(rest, played, pairs) {
			return true
		}
		*pairs = (*pairs)[:len(*pairs)-1]
	}
	return false
}

// roundRobinCircleIndex rotates an index per the circle method
// (https://en.wikipedia.org/wiki/Round-robin_tournament#Circle_method):
// index 0 stays fixed, everything else rotates by one each round.
func roundRobinCircleIndex(index, length, round int) int {
	if index == 0 {
		return 0
	}
	index -= 1
	index -= round
	index += length - 1
	index %= length - 1
	index += 1
	return index
}
