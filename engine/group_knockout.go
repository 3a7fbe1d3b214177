package engine

import (
	"fmt"
	"sort"

	"github.com/courtline/bracket-engine/models"
)

type groupKnockout struct{}

func (f *groupKnockout) Name() models.TournamentFormat { return models.FormatGroupKnockout }

// build snakes the field into groups, schedules a round robin inside each,
// and lays a knockout tree on top whose leaf slots are group-rank
// placeholders. The knockout side stays awaiting until every group table
// is final.
func (f *groupKnockout) build(b *Bracket) error {
	g := b.tournament.GroupCount
	if g < 2 {
		g = 2
	}
	q := b.tournament.QualifiersPerGroup
	if q < 1 {
		q = 2
	}
	n := len(b.seeded)
	if n < 2*g {
		return fmt.Errorf("%w: %d groups need at least %d entrants, have %d", ErrInsufficientEntrants, g, 2*g, n)
	}
	if q > n/g {
		return fmt.Errorf("%w: %d qualifiers per group exceeds smallest group size %d", ErrInvalidFormatOptions, q, n/g)
	}
	if g*q < 2 {
		return fmt.Errorf("%w: need at least 2 knockout qualifiers, have %d", ErrInvalidFormatOptions, g*q)
	}

	groups := snakeGroups(b.seeded, g)
	for i, members := range groups {
		name := groupName(i)
		for _, e := range members {
			e.Group = strPtr(name)
		}
		buildRoundRobinNodes(b, members, strPtr(name))
	}

	// Knockout leaves in pseudo-seed order: all group winners first, then
	// all runners-up, and so on. With the fold pairing of seedOrder this
	// sends same-group qualifiers to opposite ends of the tree.
	qual := g * q
	koSize := nextPowerOfTwo(qual)
	leaves := make([]models.Slot, koSize)
	for i, s := range seedOrder(koSize) {
		if s > qual {
			leaves[i] = models.Slot{Void: true}
			continue
		}
		rank := (s-1)/g + 1
		grp := (s - 1) % g
		leaves[i] = models.Slot{GroupName: strPtr(groupName(grp)), GroupRank: intPtr(rank)}
	}

	total := numRounds(koSize)
	rounds := b.buildTree(models.BracketMain, leaves, roundName)
	b.finalNode = rounds[total-1][0].ID

	if b.tournament.ThirdPlaceMatch && total >= 2 {
		b.addThirdPlaceNode(rounds[total-2])
	}
	return b.settleBuild()
}

func (f *groupKnockout) NextRoundPairing(b *Bracket) ([]*models.BracketNode, error) {
	return nil, nil
}

// maybeResolveGroups fills the knockout leaf slots once every group node
// is terminal. Entrants that did not qualify are eliminated at that
// moment.
func (b *Bracket) maybeResolveGroups() {
	if b.groupsResolved {
		return
	}
	for _, n := range b.nodes {
		if n.Group != nil && !n.Status.Terminal() {
			return
		}
	}

	tables := make(map[string][]models.StandingsRow)
	for _, e := range b.seeded {
		if e.Group == nil {
			continue
		}
		if _, ok := tables[*e.Group]; !ok {
			tables[*e.Group] = b.computeStandings(e.Group)
		}
	}

	qualified := make(map[int]bool)
	for _, n := range b.nodes {
		filledA := b.fillGroupSlot(&n.SlotA, tables, qualified)
		filledB := b.fillGroupSlot(&n.SlotB, tables, qualified)
		if filledA || filledB {
			_ = b.afterSlotFill(n)
		}
	}
	b.groupsResolved = true

	for _, e := range b.seeded {
		if !qualified[e.ID] {
			b.markEliminated(e.ID, "Group Stage")
		}
	}
}

func (b *Bracket) fillGroupSlot(s *models.Slot, tables map[string][]models.StandingsRow, qualified map[int]bool) bool {
	if s.GroupName == nil || s.GroupRank == nil || s.Filled() || s.Void {
		return false
	}
	rows := tables[*s.GroupName]
	if *s.GroupRank > len(rows) {
		s.Void = true
		return false
	}
	id := rows[*s.GroupRank-1].EntrantID
	s.EntrantID = intPtr(id)
	qualified[id] = true
	return true
}

// RanksFrom places the knockout podium first, the remaining qualifiers by
// how deep into the knockout they got, and everyone else by their final
// group table line (rank, then points, differential, points for, seed).
func (f *groupKnockout) RanksFrom(b *Bracket) ([]models.Placement, error) {
	final := b.node(b.finalNode)
	if final == nil || final.WinnerID == nil {
		return nil, ErrNotReady
	}

	placements := make([]models.Placement, 0, len(b.seeded))
	placed := make(map[int]bool)
	place := func(id int) {
		if placed[id] {
			return
		}
		placements = append(placements, models.Placement{Position: len(placements) + 1, EntrantID: id})
		placed[id] = true
	}

	place(*final.WinnerID)
	if final.LoserID != nil {
		place(*final.LoserID)
	}
	if tp := b.node(b.thirdPlaceNode); tp != nil && tp.WinnerID != nil {
		place(*tp.WinnerID)
		if tp.LoserID != nil {
			place(*tp.LoserID)
		}
	}

	// Qualifiers eliminated in the knockout, deepest exit first.
	exit := make(map[int]int)
	for _, n := range b.nodes {
		if n.Group != nil || n.LoserID == nil {
			continue
		}
		if n.Round > exit[*n.LoserID] {
			exit[*n.LoserID] = n.Round
		}
	}
	knockedOut := make([]*models.Entrant, 0)
	for _, e := range b.seeded {
		if !placed[e.ID] && exit[e.ID] > 0 {
			knockedOut = append(knockedOut, e)
		}
	}
	sort.SliceStable(knockedOut, func(i, j int) bool {
		if exit[knockedOut[i].ID] != exit[knockedOut[j].ID] {
			return exit[knockedOut[i].ID] > exit[knockedOut[j].ID]
		}
		return knockedOut[i].Seed < knockedOut[j].Seed
	})
	for _, e := range knockedOut {
		place(e.ID)
	}

	// Group-stage casualties, best table line first.
	type groupLine struct {
		entrant *models.Entrant
		row     models.StandingsRow
	}
	tables := make(map[string][]models.StandingsRow)
	rest := make([]groupLine, 0)
	for _, e := range b.seeded {
		if placed[e.ID] || e.Group == nil {
			continue
		}
		rows, ok := tables[*e.Group]
		if !ok {
			rows = b.computeStandings(e.Group)
			tables[*e.Group] = rows
		}
		for _, row := range rows {
			if row.EntrantID == e.ID {
				rest = append(rest, groupLine{entrant: e, row: row})
				break
			}
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		a, c := rest[i], rest[j]
		if a.row.Rank != c.row.Rank {
			return a.row.Rank < c.row.Rank
		}
		if a.row.Points != c.row.Points {
			return a.row.Points > c.row.Points
		}
		if a.row.PointDiff != c.row.PointDiff {
			return a.row.PointDiff > c.row.PointDiff
		}
		if a.row.PointsFor != c.row.PointsFor {
			return a.row.PointsFor > c.row.PointsFor
		}
		return a.entrant.Seed < c.entrant.Seed
	})
	for _, gl := range rest {
		place(gl.entrant.ID)
	}
	return placements, nil
}
