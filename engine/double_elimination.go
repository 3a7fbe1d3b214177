package engine

import (
	"fmt"

	"github.com/courtline/bracket-engine/models"
)

type doubleElimination struct{}

func (f *doubleElimination) Name() models.TournamentFormat { return models.FormatDoubleElimination }

// build lays out a winners bracket, a losers bracket of 2*(R-1) rounds
// that alternates minor rounds (losers-bracket survivors pair off) with
// major rounds (a winners-bracket loser drops in), and a grand final.
// Drop-in order is permuted per round so two entrants meet again as late
// as possible.
func (f *doubleElimination) build(b *Bracket) error {
	size := nextPowerOfTwo(len(b.seeded))
	total := numRounds(size)

	wbName := func(round, totalRounds int) string {
		if round == totalRounds {
			return "Winners Final"
		}
		return fmt.Sprintf("Winners Round %d", round)
	}
	wb := b.buildTree(models.BracketMain, seededLeaves(b, size), wbName)
	wbFinal := wb[total-1][0]

	lbFeeder := wbFinal // last node whose winner reaches the grand final from below
	if total >= 2 {
		lbFeeder = b.buildLosersBracket(wb, size, total)
	}

	gf := b.newNode(models.BracketMain, total+1, 1, "Grand Final")
	gf.SlotA = models.Slot{WinnerOf: intPtr(wbFinal.ID)}
	wbFinal.WinnerAdvancesTo = intPtr(gf.ID)
	if total >= 2 {
		gf.SlotB = models.Slot{WinnerOf: intPtr(lbFeeder.ID)}
		lbFeeder.WinnerAdvancesTo = intPtr(gf.ID)
	} else {
		// Two entrants: the losers bracket degenerates to a rematch.
		gf.SlotB = models.Slot{LoserOf: intPtr(wbFinal.ID)}
		wbFinal.LoserAdvancesTo = intPtr(gf.ID)
	}
	b.grandFinal = gf.ID
	b.finalNode = gf.ID

	if b.tournament.GrandFinalReset {
		reset := b.newNode(models.BracketMain, gf.Round+1, 1, "Grand Final Reset")
		reset.SlotA = models.Slot{WinnerOf: intPtr(gf.ID)}
		reset.SlotB = models.Slot{LoserOf: intPtr(gf.ID)}
		gf.WinnerAdvancesTo = intPtr(reset.ID)
		gf.LoserAdvancesTo = intPtr(reset.ID)
		b.grandFinalReset = reset.ID
		b.finalNode = reset.ID
	}

	return b.settleBuild()
}

// buildLosersBracket wires the consolation side and returns its final
// node. wb holds the winners-bracket rounds, size the padded entrant
// count, total the winners-bracket height.
func (b *Bracket) buildLosersBracket(wb [][]*models.BracketNode, size, total int) *models.BracketNode {
	lbTotal := 2 * (total - 1)
	lbName := func(round int) string {
		if round == lbTotal {
			return "Losers Final"
		}
		return fmt.Sprintf("Losers Round %d", round)
	}

	// Round 1 pairs the winners-bracket first-round losers.
	prev := make([]*models.BracketNode, 0, size/4)
	for j := 0; j < size/4; j++ {
		n := b.newNode(models.BracketConsolation, 1, j+1, lbName(1))
		feedLoser(n, &n.SlotA, wb[0][2*j])
		feedLoser(n, &n.SlotB, wb[0][2*j+1])
		prev = append(prev, n)
	}

	for stage := 1; stage <= total-1; stage++ {
		if stage >= 2 {
			// Minor round: survivors of the previous major round pair off.
			round := 2*stage - 1
			cur := make([]*models.BracketNode, 0, len(prev)/2)
			for j := 0; j < len(prev); j += 2 {
				n := b.newNode(models.BracketConsolation, round, j/2+1, lbName(round))
				feedWinner(n, &n.SlotA, prev[j])
				feedWinner(n, &n.SlotB, prev[j+1])
				cur = append(cur, n)
			}
			prev = cur
		}

		// Major round: a winners-bracket loser drops in against each
		// survivor.
		round := 2 * stage
		drops := wb[stage] // losers of winners-bracket round stage+1
		order := loserDropOrder(len(drops), stage)
		cur := make([]*models.BracketNode, 0, len(prev))
		for j := range prev {
			n := b.newNode(models.BracketConsolation, round, j+1, lbName(round))
			feedLoser(n, &n.SlotA, drops[order[j]])
			feedWinner(n, &n.SlotB, prev[j])
			cur = append(cur, n)
		}
		prev = cur
	}
	return prev[0]
}

func feedWinner(n *models.BracketNode, slot *models.Slot, src *models.BracketNode) {
	*slot = models.Slot{WinnerOf: intPtr(src.ID)}
	src.WinnerAdvancesTo = intPtr(n.ID)
}

func feedLoser(n *models.BracketNode, slot *models.Slot, src *models.BracketNode) {
	*slot = models.Slot{LoserOf: intPtr(src.ID)}
	src.LoserAdvancesTo = intPtr(n.ID)
}

// loserDropOrder permutes which winners-bracket loser drops into which
// consolation node, alternating between a full reversal and a half swap
// by stage so rematches against a recent opponent are pushed back.
func loserDropOrder(count, stage int) []int {
	order := make([]int, count)
	for i := range order {
		order[i] = i
	}
	if count < 2 {
		return order
	}
	if stage%2 == 1 {
		for i, j := 0, count-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
		return order
	}
	half := count / 2
	for i := 0; i < half; i++ {
		order[i], order[i+half] = order[i+half], order[i]
	}
	return order
}

func (f *doubleElimination) NextRoundPairing(b *Bracket) ([]*models.BracketNode, error) {
	return nil, nil
}

// RanksFrom takes the champion and runner-up from whichever grand final
// decided the title, third place from the losers final, and ranks everyone
// else by how deep into the losers bracket they got.
func (f *doubleElimination) RanksFrom(b *Bracket) ([]models.Placement, error) {
	decider := b.node(b.grandFinal)
	if reset := b.node(b.grandFinalReset); reset != nil && reset.WinnerID != nil {
		decider = reset
	}
	if decider == nil || decider.WinnerID == nil {
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

	place(*decider.WinnerID)
	if decider.LoserID != nil {
		place(*decider.LoserID)
	}
	// The losers final eliminates the third-place finisher.
	for _, n := range b.nodes {
		if n.BracketType == models.BracketConsolation && n.RoundName == "Losers Final" && n.LoserID != nil {
			place(*n.LoserID)
		}
	}
	return appendByExitDepth(b, placements, placed, models.BracketConsolation), nil
}
