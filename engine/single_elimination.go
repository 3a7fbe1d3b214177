package engine

import (
	"github.com/courtline/bracket-engine/models"
)

type singleElimination struct{}

func (f *singleElimination) Name() models.TournamentFormat { return models.FormatSingleElimination }

// build lays out a knockout tree. Entrants are padded to the next power of
// two with void slots; a seed facing a void slot is resolved as a bye on
// the spot, so play always starts with only real matches open.
func (f *singleElimination) build(b *Bracket) error {
	n := len(b.seeded)
	size := nextPowerOfTwo(n)
	total := numRounds(n)

	rounds := b.buildTree(models.BracketMain, seededLeaves(b, size), roundName)
	final := rounds[total-1][0]
	b.finalNode = final.ID

	if b.tournament.ThirdPlaceMatch && total >= 2 {
		b.addThirdPlaceNode(rounds[total-2])
	}
	return b.settleBuild()
}

func (f *singleElimination) NextRoundPairing(b *Bracket) ([]*models.BracketNode, error) {
	return nil, nil
}

// RanksFrom places the finalists first, the third-place decider next when
// one was played, and everyone else by how deep into the bracket they
// survived, ties broken by seed.
func (f *singleElimination) RanksFrom(b *Bracket) ([]models.Placement, error) {
	final := b.node(b.finalNode)
	if final == nil || final.WinnerID == nil {
		return nil, ErrNotReady
	}

	placements := make([]models.Placement, 0, len(b.seeded))
	placed := make(map[int]bool)
	place := func(id int) {
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
	return appendByExitDepth(b, placements, placed, models.BracketMain), nil
}

// seededLeaves fills the leaf slots of a bracket of the given size in
// seedOrder, padding missing seeds with void slots.
func seededLeaves(b *Bracket, size int) []models.Slot {
	order := seedOrder(size)
	leaves := make([]models.Slot, size)
	for i, seed := range order {
		if seed <= len(b.seeded) {
			leaves[i] = models.Slot{EntrantID: entrant(b.seeded[seed-1])}
		} else {
			leaves[i] = models.Slot{Void: true}
		}
	}
	return leaves
}

// buildTree appends a full elimination tree over the given leaf slots
// (len must be a power of two ≥ 2) and wires winner advancement between
// consecutive rounds. Returns the nodes grouped by round, first round
// first. Statuses are left awaiting for settleBuild.
func (b *Bracket) buildTree(bt models.BracketType, leaves []models.Slot, nameFor func(round, total int) string) [][]*models.BracketNode {
	total := numRounds(len(leaves))
	rounds := make([][]*models.BracketNode, total)

	first := make([]*models.BracketNode, 0, len(leaves)/2)
	for i := 0; i < len(leaves); i += 2 {
		n := b.newNode(bt, 1, i/2+1, nameFor(1, total))
		n.SlotA = leaves[i]
		n.SlotB = leaves[i+1]
		first = append(first, n)
	}
	rounds[0] = first

	for r := 2; r <= total; r++ {
		prev := rounds[r-2]
		cur := make([]*models.BracketNode, 0, len(prev)/2)
		for i := 0; i < len(prev); i += 2 {
			n := b.newNode(bt, r, i/2+1, nameFor(r, total))
			n.SlotA = models.Slot{WinnerOf: intPtr(prev[i].ID)}
			n.SlotB = models.Slot{WinnerOf: intPtr(prev[i+1].ID)}
			prev[i].WinnerAdvancesTo = intPtr(n.ID)
			prev[i+1].WinnerAdvancesTo = intPtr(n.ID)
			cur = append(cur, n)
		}
		rounds[r-1] = cur
	}
	return rounds
}

// addThirdPlaceNode wires a third-place decider fed by the semifinal
// losers.
func (b *Bracket) addThirdPlaceNode(semis []*models.BracketNode) {
	tp := b.newNode(models.BracketThirdPlace, semis[0].Round+1, 1, "Third Place")
	tp.SlotA = models.Slot{LoserOf: intPtr(semis[0].ID)}
	tp.SlotB = models.Slot{LoserOf: intPtr(semis[1].ID)}
	semis[0].LoserAdvancesTo = intPtr(tp.ID)
	semis[1].LoserAdvancesTo = intPtr(tp.ID)
	b.thirdPlaceNode = tp.ID
}

// settleBuild assigns initial statuses after the graph is wired: fully
// slotted nodes become pending, single-entrant nodes resolve as byes (with
// cascading propagation), and nodes fed only by voids collapse outright.
func (b *Bracket) settleBuild() error {
	for _, n := range b.nodes {
		if n.Status != models.NodeAwaiting {
			continue
		}
		switch {
		case n.SlotA.Void && n.SlotB.Void:
			if err := b.voidOut(n); err != nil {
				return err
			}
		case n.ReadyForPlay():
			n.Status = models.NodePending
		case n.SlotA.Filled() && n.SlotB.Void:
			if err := b.resolveAsBye(n, *n.SlotA.EntrantID); err != nil {
				return err
			}
		case n.SlotB.Filled() && n.SlotA.Void:
			if err := b.resolveAsBye(n, *n.SlotB.EntrantID); err != nil {
				return err
			}
		}
	}
	return nil
}
