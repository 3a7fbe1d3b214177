package engine

import (
	"fmt"
	"time"

	"github.com/courtline/bracket-engine/models"
)

// Result is one reported outcome, delivered by the score-reporting
// collaborator. When ForfeitBy is set the scores are ignored and the
// non-forfeiting entrant wins with a zero score.
type Result struct {
	NodeID    int
	ScoreA    int
	ScoreB    int
	ForfeitBy *int
	Reason    string
}

// Schedule moves a node from pending to scheduled, attaching the venue and
// time supplied by the officiating collaborator. The values are stored, not
// validated beyond being present.
func (b *Bracket) Schedule(nodeID int, venue, court string, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancelled {
		return ErrTournamentCancelled
	}
	n := b.node(nodeID)
	if n == nil {
		return ErrNodeNotFound
	}
	if n.Status.Terminal() {
		return ErrNodeAlreadyResolved
	}
	if n.Status != models.NodePending {
		return fmt.Errorf("%w: cannot schedule node in status %q", ErrInvalidTransition, n.Status)
	}
	if !n.ReadyForPlay() {
		return fmt.Errorf("%w: cannot schedule a node with an empty slot", ErrInvalidTransition)
	}
	if venue == "" || at.IsZero() {
		return fmt.Errorf("%w: schedule requires a venue and a time", ErrInvalidTransition)
	}

	n.Status = models.NodeScheduled
	n.Venue = strPtr(venue)
	if court != "" {
		n.Court = strPtr(court)
	}
	t := at
	n.ScheduledAt = &t

	b.emit(Event{Type: EventNodeScheduled, NodeID: intPtr(n.ID)})
	return nil
}

// Start moves a scheduled node to in_progress. Starting an already started
// node is a no-op so double deliveries are harmless.
func (b *Bracket) Start(nodeID int, now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancelled {
		return ErrTournamentCancelled
	}
	n := b.node(nodeID)
	if n == nil {
		return ErrNodeNotFound
	}
	if n.Status == models.NodeInProgress {
		return nil
	}
	if n.Status.Terminal() {
		return ErrNodeAlreadyResolved
	}
	if n.Status != models.NodeScheduled {
		return fmt.Errorf("%w: cannot start node in status %q", ErrInvalidTransition, n.Status)
	}
	if n.ScheduledAt != nil && now.Before(*n.ScheduledAt) {
		return fmt.Errorf("%w: node is scheduled for %s", ErrInvalidTransition, n.ScheduledAt.Format(time.RFC3339))
	}

	n.Status = models.NodeInProgress
	return nil
}

// ReportResult resolves a node and propagates its outcome through the
// graph: records are updated, the winner and loser are placed into their
// downstream slots, downstream nodes awaiting only this result become
// pending, and completion of the whole bracket is detected.
//
// The call is all-or-nothing: every validation runs before the first write,
// so a rejected result leaves no partial state behind.
func (b *Bracket) ReportResult(res Result) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancelled {
		return ErrTournamentCancelled
	}
	n := b.node(res.NodeID)
	if n == nil {
		return ErrNodeNotFound
	}
	if n.Status.Terminal() {
		return ErrNodeAlreadyResolved
	}
	if !n.ReadyForPlay() {
		return fmt.Errorf("%w: node %d still has an empty slot", ErrInvalidResult, n.ID)
	}

	if res.ForfeitBy != nil {
		return b.resolveForfeit(n, *res.ForfeitBy, res.Reason)
	}
	return b.resolveCompleted(n, res.ScoreA, res.ScoreB)
}

func (b *Bracket) resolveCompleted(n *models.BracketNode, scoreA, scoreB int) error {
	if scoreA < 0 || scoreB < 0 {
		return fmt.Errorf("%w: negative score", ErrInvalidResult)
	}
	draw := scoreA == scoreB
	if draw && !b.drawsAllowed(n) {
		return fmt.Errorf("%w: ties are not allowed in %s nodes", ErrInvalidResult, n.BracketType)
	}

	n.ScoreA = intPtr(scoreA)
	n.ScoreB = intPtr(scoreB)
	n.Status = models.NodeCompleted

	win, drawPts, loss := b.tournament.PointSchedule()

	if draw {
		a := b.entrants[*n.SlotA.EntrantID]
		bb := b.entrants[*n.SlotB.EntrantID]
		a.Record.AddDraw(scoreA, scoreB, drawPts)
		bb.Record.AddDraw(scoreB, scoreA, drawPts)
		b.afterTerminal(n)
		return nil
	}

	winnerID, loserID := *n.SlotA.EntrantID, *n.SlotB.EntrantID
	winnerScore, loserScore := scoreA, scoreB
	if scoreB > scoreA {
		winnerID, loserID = loserID, winnerID
		winnerScore, loserScore = scoreB, scoreA
	}
	n.WinnerID = intPtr(winnerID)
	n.LoserID = intPtr(loserID)

	b.entrants[winnerID].Record.AddWin(winnerScore, loserScore, win)
	b.entrants[loserID].Record.AddLoss(loserScore, winnerScore, loss)

	b.emit(Event{Type: EventNodeCompleted, NodeID: intPtr(n.ID), WinnerID: intPtr(winnerID), LoserID: intPtr(loserID)})

	if err := b.propagate(n); err != nil {
		return err
	}
	b.afterTerminal(n)
	return nil
}

func (b *Bracket) resolveForfeit(n *models.BracketNode, forfeitBy int, reason string) error {
	slot := n.SlotOf(forfeitBy)
	if slot == nil {
		return fmt.Errorf("%w: entrant %d is not in node %d", ErrInvalidResult, forfeitBy, n.ID)
	}
	winnerID := *n.SlotA.EntrantID
	if winnerID == forfeitBy {
		winnerID = *n.SlotB.EntrantID
	}

	n.Status = models.NodeForfeit
	n.WinnerID = intPtr(winnerID)
	n.LoserID = intPtr(forfeitBy)
	n.ForfeitEntrantID = intPtr(forfeitBy)
	if reason != "" {
		n.ForfeitReason = strPtr(reason)
	}
	// No game score is recorded for a forfeit.
	win, _, loss := b.tournament.PointSchedule()
	b.entrants[winnerID].Record.AddWin(0, 0, win)
	b.entrants[forfeitBy].Record.AddLoss(0, 0, loss)

	b.emit(Event{Type: EventNodeCompleted, NodeID: intPtr(n.ID), WinnerID: intPtr(winnerID), LoserID: intPtr(forfeitBy)})

	if err := b.propagate(n); err != nil {
		return err
	}
	b.afterTerminal(n)
	return nil
}

// drawsAllowed: draws only exist in round-robin style play, and only when
// the tournament opted in. Elimination nodes always reject ties.
func (b *Bracket) drawsAllowed(n *models.BracketNode) bool {
	if !b.tournament.AllowDraws {
		return false
	}
	if b.tournament.Format == models.FormatRoundRobin {
		return true
	}
	// Group stage nodes of a group-then-knockout tournament.
	return b.tournament.Format == models.FormatGroupKnockout && n.Group != nil
}

// propagate writes a terminal node's winner and loser into their downstream
// slots and promotes any node that is thereby fully slotted.
func (b *Bracket) propagate(n *models.BracketNode) error {
	if n.WinnerAdvancesTo != nil && n.WinnerID != nil {
		if err := b.placeInto(*n.WinnerAdvancesTo, n.ID, false, *n.WinnerID); err != nil {
			return err
		}
	}
	if n.LoserAdvancesTo != nil && n.LoserID != nil {
		if err := b.placeInto(*n.LoserAdvancesTo, n.ID, true, *n.LoserID); err != nil {
			return err
		}
	}
	if n.LoserAdvancesTo == nil && n.LoserID != nil && b.eliminatesLoser(n) {
		b.markEliminated(*n.LoserID, n.RoundName)
	}
	return nil
}

// eliminatesLoser reports whether losing this node knocks the entrant out
// of the tournament. Round-robin and Swiss never eliminate; group stage
// nodes only feed standings.
func (b *Bracket) eliminatesLoser(n *models.BracketNode) bool {
	switch b.tournament.Format {
	case models.FormatRoundRobin, models.FormatSwiss:
		return false
	}
	return n.Group == nil
}

func (b *Bracket) markEliminated(entrantID int, round string) {
	e := b.entrants[entrantID]
	now := time.Now()
	e.EliminationRound = strPtr(round)
	e.EliminatedAt = &now
	b.emit(Event{Type: EventEntrantEliminated, EntrantID: intPtr(entrantID)})
}

// placeInto fills the slot of the target node that references the source
// node. Two racing propagations can only collide when they target the very
// same slot, which is a graph bug; the second one fails loudly with
// ErrSlotAlreadyFilled instead of overwriting.
func (b *Bracket) placeInto(targetID, sourceID int, takeLoser bool, entrantID int) error {
	target := b.node(targetID)
	if target == nil {
		return fmt.Errorf("%w: advancement target %d", ErrNodeNotFound, targetID)
	}
	slot := slotFedBy(target, sourceID, takeLoser)
	if slot == nil {
		return fmt.Errorf("%w: node %d has no slot fed by node %d", ErrNodeNotFound, targetID, sourceID)
	}
	if slot.Filled() {
		return fmt.Errorf("%w: node %d slot fed by node %d", ErrSlotAlreadyFilled, targetID, sourceID)
	}
	slot.EntrantID = intPtr(entrantID)
	return b.afterSlotFill(target)
}

func slotFedBy(n *models.BracketNode, sourceID int, takeLoser bool) *models.Slot {
	match := func(s *models.Slot) bool {
		if takeLoser {
			return s.LoserOf != nil && *s.LoserOf == sourceID
		}
		return s.WinnerOf != nil && *s.WinnerOf == sourceID
	}
	if match(&n.SlotA) {
		return &n.SlotA
	}
	if match(&n.SlotB) {
		return &n.SlotB
	}
	return nil
}

// afterSlotFill promotes a freshly slotted node: both entrants present
// makes it pending, one entrant against a void slot resolves it as a bye.
func (b *Bracket) afterSlotFill(n *models.BracketNode) error {
	if n.Status != models.NodeAwaiting {
		return nil
	}
	if n.ReadyForPlay() {
		n.Status = models.NodePending
		return nil
	}
	if n.SlotA.Filled() && n.SlotB.Void {
		return b.resolveAsBye(n, *n.SlotA.EntrantID)
	}
	if n.SlotB.Filled() && n.SlotA.Void {
		return b.resolveAsBye(n, *n.SlotB.EntrantID)
	}
	return nil
}

// resolveAsBye auto-advances the only entrant a node will ever hold. In
// Swiss play a bye counts as a scoreless win so the pairing points stay
// honest; elsewhere byes are structural and leave records untouched.
func (b *Bracket) resolveAsBye(n *models.BracketNode, winnerID int) error {
	n.Status = models.NodeBye
	n.WinnerID = intPtr(winnerID)

	if b.tournament.Format == models.FormatSwiss {
		win, _, _ := b.tournament.PointSchedule()
		b.entrants[winnerID].Record.AddWin(0, 0, win)
	}
	if n.LoserAdvancesTo != nil {
		// The loser of a bye never exists; the downstream slot is void.
		if err := b.voidSlot(*n.LoserAdvancesTo, n.ID, true); err != nil {
			return err
		}
	}
	if n.WinnerAdvancesTo != nil {
		return b.placeInto(*n.WinnerAdvancesTo, n.ID, false, winnerID)
	}
	return nil
}

// voidSlot marks a downstream slot as permanently empty and collapses the
// node if both sides are now void.
func (b *Bracket) voidSlot(targetID, sourceID int, takeLoser bool) error {
	target := b.node(targetID)
	if target == nil {
		return fmt.Errorf("%w: advancement target %d", ErrNodeNotFound, targetID)
	}
	slot := slotFedBy(target, sourceID, takeLoser)
	if slot == nil {
		return fmt.Errorf("%w: node %d has no slot fed by node %d", ErrNodeNotFound, targetID, sourceID)
	}
	slot.Void = true

	if target.Status != models.NodeAwaiting {
		return nil
	}
	if target.SlotA.Void && target.SlotB.Void {
		return b.voidOut(target)
	}
	if target.SlotA.Filled() && target.SlotB.Void {
		return b.resolveAsBye(target, *target.SlotA.EntrantID)
	}
	if target.SlotB.Filled() && target.SlotA.Void {
		return b.resolveAsBye(target, *target.SlotB.EntrantID)
	}
	return nil
}

// voidOut cancels a node both of whose feeders were byes; its own outputs
// become void in turn.
func (b *Bracket) voidOut(n *models.BracketNode) error {
	n.Status = models.NodeCancelled
	if n.WinnerAdvancesTo != nil {
		if err := b.voidSlot(*n.WinnerAdvancesTo, n.ID, false); err != nil {
			return err
		}
	}
	if n.LoserAdvancesTo != nil {
		if err := b.voidSlot(*n.LoserAdvancesTo, n.ID, true); err != nil {
			return err
		}
	}
	return nil
}

// afterTerminal runs the format hooks that fire once a node settles:
// grand-final reset bookkeeping, group standings refresh, lazy Swiss round
// generation, qualifier resolution, and tournament completion.
func (b *Bracket) afterTerminal(n *models.BracketNode) {
	if b.grandFinalReset >= 0 && n.ID == b.grandFinal && n.WinnerID != nil {
		// If the winners-bracket champion (slot A by construction) takes
		// game one there is nothing left to reset.
		if n.SlotA.EntrantID != nil && *n.SlotA.EntrantID == *n.WinnerID {
			reset := b.node(b.grandFinalReset)
			if !reset.Status.Terminal() {
				reset.Status = models.NodeCancelled
			}
		}
	}

	if n.Group != nil || b.tournament.Format == models.FormatRoundRobin || b.tournament.Format == models.FormatSwiss {
		b.emit(Event{Type: EventGroupStandingsUpdated, Group: n.Group})
	}

	switch b.tournament.Format {
	case models.FormatSwiss:
		b.maybeAdvanceSwiss()
	case models.FormatGroupKnockout:
		b.maybeResolveGroups()
	}

	b.maybeComplete()
}

// maybeComplete finalizes the tournament once no node that affects final
// placement remains open.
func (b *Bracket) maybeComplete() {
	if b.completed {
		return
	}
	_, _ = b.finalizeLocked()
}

func (b *Bracket) allNodesTerminal() bool {
	for _, n := range b.nodes {
		if !n.Status.Terminal() {
			return false
		}
	}
	return true
}
