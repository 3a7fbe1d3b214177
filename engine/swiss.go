package engine

import (
	"fmt"

	"github.com/courtline/bracket-engine/models"
)

type swiss struct{}

func (f *swiss) Name() models.TournamentFormat { return models.FormatSwiss }

// build generates round one only; later rounds depend on results and are
// paired lazily as each round finishes. Round one folds the field: the top
// half of the seeds plays the bottom half (1 v n/2+1, 2 v n/2+2, ...).
func (f *swiss) build(b *Bracket) error {
	n := len(b.seeded)
	b.swissRounds = b.tournament.SwissRounds
	if b.swissRounds <= 0 {
		b.swissRounds = numRounds(n)
	}

	half := (n + 1) / 2
	ordered := make([]*models.Entrant, 0, n)
	for i := 0; i < half; i++ {
		ordered = append(ordered, b.seeded[i])
		if half+i < n {
			ordered = append(ordered, b.seeded[half+i])
		}
	}
	_, err := f.generate(b, 1, ordered)
	return err
}

// NextRoundPairing pairs the next round from the current table: entrants
// ordered by tournament points (seed breaking ties), adjacent entrants
// paired, repeat opponents avoided by backtracking. The bracket calls this
// under its own lock as rounds finish; use AdvanceSwissRound from outside.
func (f *swiss) NextRoundPairing(b *Bracket) ([]*models.BracketNode, error) {
	round := b.currentSwiss + 1
	if round > b.swissRounds {
		return nil, nil
	}

	standings := make([]swissStanding, len(b.seeded))
	for i, e := range b.seeded {
		standings[i] = swissStanding{entrant: e, points: e.Record.TournamentPoints}
	}
	sortSwissStandings(standings)

	ordered := make([]*models.Entrant, len(standings))
	for i, s := range standings {
		ordered[i] = s.entrant
	}
	return f.generate(b, round, ordered)
}

// generate creates the nodes for one round from an ordered field. With an
// odd field the lowest-ranked entrant that has not yet had a bye sits out
// and collects a scoreless win.
func (f *swiss) generate(b *Bracket, round int, ordered []*models.Entrant) ([]*models.BracketNode, error) {
	var byeEntrant *models.Entrant
	if len(ordered)%2 == 1 {
		hadBye := b.swissByeHistory()
		idx := len(ordered) - 1
		for i := len(ordered) - 1; i >= 0; i-- {
			if !hadBye[ordered[i].ID] {
				idx = i
				break
			}
		}
		byeEntrant = ordered[idx]
		ordered = append(append([]*models.Entrant{}, ordered[:idx]...), ordered[idx+1:]...)
	}

	pairs, err := pairSwiss(ordered, b.havePlayed)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("Round %d", round)
	created := make([]*models.BracketNode, 0, len(pairs)+1)
	for i, p := range pairs {
		n := b.newNode(models.BracketMain, round, i+1, name)
		n.SwissRound = intPtr(round)
		n.SlotA = models.Slot{EntrantID: entrant(p[0])}
		n.SlotB = models.Slot{EntrantID: entrant(p[1])}
		n.Status = models.NodePending
		created = append(created, n)
	}
	if byeEntrant != nil {
		n := b.newNode(models.BracketMain, round, len(pairs)+1, name)
		n.SwissRound = intPtr(round)
		n.SlotA = models.Slot{EntrantID: entrant(byeEntrant)}
		n.SlotB = models.Slot{Void: true}
		if err := b.afterSlotFill(n); err != nil {
			return nil, err
		}
		created = append(created, n)
	}

	b.currentSwiss = round
	return created, nil
}

func (b *Bracket) havePlayed(a, c int) bool {
	for _, n := range b.nodes {
		if n.SlotA.EntrantID == nil || n.SlotB.EntrantID == nil {
			continue
		}
		x, y := *n.SlotA.EntrantID, *n.SlotB.EntrantID
		if (x == a && y == c) || (x == c && y == a) {
			return true
		}
	}
	return false
}

func swissRoundOf(n *models.BracketNode) int {
	if n.SwissRound == nil {
		return 0
	}
	return *n.SwissRound
}

func (b *Bracket) swissByeHistory() map[int]bool {
	had := make(map[int]bool)
	for _, n := range b.nodes {
		if n.Status == models.NodeBye && n.WinnerID != nil {
			had[*n.WinnerID] = true
		}
	}
	return had
}

// maybeAdvanceSwiss pairs the next round once every node of the current
// one is terminal. Pairing failure is left for AdvanceSwissRound to
// surface; results themselves are never rolled back over it.
func (b *Bracket) maybeAdvanceSwiss() {
	if b.currentSwiss >= b.swissRounds {
		return
	}
	for _, n := range b.nodes {
		if swissRoundOf(n) == b.currentSwiss && !n.Status.Terminal() {
			return
		}
	}
	_, _ = b.format.NextRoundPairing(b)
}

// AdvanceSwissRound generates the next Swiss round by hand. It is the
// recovery path when automatic pairing failed with ErrUnresolvablePairing,
// and returns ErrNotReady while the current round is still open.
func (b *Bracket) AdvanceSwissRound() ([]models.BracketNode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancelled {
		return nil, ErrTournamentCancelled
	}
	if b.tournament.Format != models.FormatSwiss {
		return nil, fmt.Errorf("%w: not a swiss tournament", ErrInvalidTransition)
	}
	if b.currentSwiss >= b.swissRounds {
		return nil, fmt.Errorf("%w: all %d rounds generated", ErrInvalidTransition, b.swissRounds)
	}
	for _, n := range b.nodes {
		if swissRoundOf(n) == b.currentSwiss && !n.Status.Terminal() {
			return nil, ErrNotReady
		}
	}

	created, err := b.format.NextRoundPairing(b)
	if err != nil {
		return nil, err
	}
	out := make([]models.BracketNode, len(created))
	for i, n := range created {
		out[i] = *n
	}
	return out, nil
}

// RanksFrom reads the final order off the Swiss table.
func (f *swiss) RanksFrom(b *Bracket) ([]models.Placement, error) {
	rows := b.computeStandings(nil)
	placements := make([]models.Placement, len(rows))
	for i, r := range rows {
		placements[i] = models.Placement{Position: i + 1, EntrantID: r.EntrantID}
	}
	return placements, nil
}
