package engine

import (
	"fmt"

	"github.com/courtline/bracket-engine/models"
)

type roundRobin struct{}

func (f *roundRobin) Name() models.TournamentFormat { return models.FormatRoundRobin }

// build schedules every pairing once using the circle method, n-1 rounds
// for an even field and n rounds with one sit-out per round for an odd
// one. All nodes are playable immediately; rounds only spread the
// schedule.
func (f *roundRobin) build(b *Bracket) error {
	buildRoundRobinNodes(b, b.seeded, nil)
	return b.settleBuild()
}

// buildRoundRobinNodes emits all-play-all nodes for one field of entrants,
// tagging them with the given group. Shared with the group stage of
// group-then-knockout tournaments.
func buildRoundRobinNodes(b *Bracket, field []*models.Entrant, group *string) {
	length := len(field)
	if length%2 == 1 {
		length++ // odd field: one sit-out slot per round
	}
	rounds := length - 1

	for r := 0; r < rounds; r++ {
		pos := 1
		for i := 0; i < length/2; i++ {
			ai := roundRobinCircleIndex(i, length, r)
			bi := roundRobinCircleIndex(length-1-i, length, r)
			if ai >= len(field) || bi >= len(field) {
				continue // pairing against the sit-out slot
			}
			n := b.newNode(models.BracketMain, r+1, pos, fmt.Sprintf("Round %d", r+1))
			n.Group = group
			n.SlotA = models.Slot{EntrantID: entrant(field[ai])}
			n.SlotB = models.Slot{EntrantID: entrant(field[bi])}
			pos++
		}
	}
}

func (f *roundRobin) NextRoundPairing(b *Bracket) ([]*models.BracketNode, error) {
	return nil, nil
}

// RanksFrom reads the final table straight off the standings.
func (f *roundRobin) RanksFrom(b *Bracket) ([]models.Placement, error) {
	rows := b.computeStandings(nil)
	placements := make([]models.Placement, len(rows))
	for i, r := range rows {
		placements[i] = models.Placement{Position: i + 1, EntrantID: r.EntrantID}
	}
	return placements, nil
}
