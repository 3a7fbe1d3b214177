package engine

import (
	"fmt"

	"github.com/courtline/bracket-engine/models"
)

// Reopen reverses a terminal node so its result can be corrected. The
// node's record contributions are rolled back and any entrant it pushed
// downstream is retracted.
//
// An open downstream node that consumed the retracted placement is evicted
// and demoted back to awaiting. If a downstream node has itself resolved,
// Reopen refuses with ErrCascadingReopen and the operator must reopen that
// node first: the engine never unwinds more than one result per call.
//
// Status reversals: completed → in_progress (pending if the node was never
// scheduled), forfeit → pending, bye and cancelled → awaiting.
func (b *Bracket) Reopen(nodeID int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancelled {
		return ErrTournamentCancelled
	}
	n := b.node(nodeID)
	if n == nil {
		return ErrNodeNotFound
	}
	if !n.Status.Terminal() {
		return fmt.Errorf("%w: node %d is not resolved", ErrInvalidTransition, n.ID)
	}
	if n.Group != nil && b.groupsResolved {
		return fmt.Errorf("%w: knockout slots already drew on this group table", ErrCascadingReopen)
	}
	if b.tournament.Format == models.FormatSwiss && swissRoundOf(n) < b.currentSwiss {
		return fmt.Errorf("%w: round %d pairings already drew on this result", ErrCascadingReopen, b.currentSwiss)
	}
	if err := b.checkRetractable(n); err != nil {
		return err
	}

	b.retractOutputs(n)
	b.reverseRecords(n)

	if n.LoserID != nil {
		e := b.entrants[*n.LoserID]
		e.EliminationRound = nil
		e.EliminatedAt = nil
	}

	switch n.Status {
	case models.NodeCompleted:
		// A result may be reported straight from pending without the node
		// ever being scheduled; such a node goes back to pending, not to an
		// in_progress state it never held.
		if n.ScheduledAt != nil {
			n.Status = models.NodeInProgress
		} else {
			n.Status = models.NodePending
		}
	case models.NodeForfeit:
		n.Status = models.NodePending
	default: // bye, cancelled
		n.Status = models.NodeAwaiting
	}
	n.ScoreA, n.ScoreB = nil, nil
	n.WinnerID, n.LoserID = nil, nil
	n.ForfeitEntrantID, n.ForfeitReason = nil, nil

	// A finished tournament is finished no more.
	if b.completed {
		b.completed = false
		b.finalRanking = nil
		for _, e := range b.entrants {
			e.FinalPosition = nil
		}
	}
	return nil
}

// checkRetractable verifies every downstream slot this node touched can
// still give its occupant (or voidness) back.
func (b *Bracket) checkRetractable(n *models.BracketNode) error {
	check := func(targetID *int, takeLoser bool) error {
		if targetID == nil {
			return nil
		}
		target := b.node(*targetID)
		slot := slotFedBy(target, n.ID, takeLoser)
		if slot == nil || (!slot.Filled() && !slot.Void) {
			return nil
		}
		if target.Status.Terminal() {
			return fmt.Errorf("%w: node %d already resolved on top of this result", ErrCascadingReopen, target.ID)
		}
		return nil
	}
	if err := check(n.WinnerAdvancesTo, false); err != nil {
		return err
	}
	return check(n.LoserAdvancesTo, true)
}

// retractOutputs empties the downstream slots fed by this node and demotes
// the affected nodes back to awaiting. checkRetractable has already
// guaranteed this cannot clobber progress.
func (b *Bracket) retractOutputs(n *models.BracketNode) {
	retract := func(targetID *int, takeLoser bool) {
		if targetID == nil {
			return
		}
		target := b.node(*targetID)
		slot := slotFedBy(target, n.ID, takeLoser)
		if slot == nil {
			return
		}
		slot.EntrantID = nil
		slot.Void = false
		if target.Status != models.NodeAwaiting {
			target.Status = models.NodeAwaiting
			target.ScheduledAt = nil
			target.Venue = nil
			target.Court = nil
		}
	}
	retract(n.WinnerAdvancesTo, false)
	retract(n.LoserAdvancesTo, true)
}

// reverseRecords rolls back whatever the node added to the two records.
func (b *Bracket) reverseRecords(n *models.BracketNode) {
	win, draw, loss := b.tournament.PointSchedule()

	switch n.Status {
	case models.NodeCompleted:
		if n.WinnerID == nil { // draw
			if n.SlotA.EntrantID != nil && n.SlotB.EntrantID != nil && n.ScoreA != nil {
				b.entrants[*n.SlotA.EntrantID].Record.RemoveDraw(*n.ScoreA, *n.ScoreB, draw)
				b.entrants[*n.SlotB.EntrantID].Record.RemoveDraw(*n.ScoreB, *n.ScoreA, draw)
			}
			return
		}
		ws, ls := 0, 0
		if n.ScoreA != nil && n.ScoreB != nil {
			ws, ls = *n.ScoreA, *n.ScoreB
			if ls > ws {
				ws, ls = ls, ws
			}
		}
		b.entrants[*n.WinnerID].Record.RemoveWin(ws, ls, win)
		b.entrants[*n.LoserID].Record.RemoveLoss(ls, ws, loss)
	case models.NodeForfeit:
		b.entrants[*n.WinnerID].Record.RemoveWin(0, 0, win)
		b.entrants[*n.LoserID].Record.RemoveLoss(0, 0, loss)
	case models.NodeBye:
		if b.tournament.Format == models.FormatSwiss && n.WinnerID != nil {
			b.entrants[*n.WinnerID].Record.RemoveWin(0, 0, win)
		}
	}
}
