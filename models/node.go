package models

import "time"

// NodeStatus mirrors the bracket node ENUM in the database.
//
// "awaiting" is the explicit rendering of the pre-pending state: the node
// exists in the graph but at least one slot still waits on an upstream
// result or a group placement. It becomes pending the moment both slots
// hold entrants.
type NodeStatus string

const (
	NodeAwaiting   NodeStatus = "awaiting"
	NodePending    NodeStatus = "pending"
	NodeScheduled  NodeStatus = "scheduled"
	NodeInProgress NodeStatus = "in_progress"
	NodeCompleted  NodeStatus = "completed"
	NodeBye        NodeStatus = "bye"
	NodeForfeit    NodeStatus = "forfeit"
	NodeCancelled  NodeStatus = "cancelled"
)

// Terminal reports whether the node can never produce another transition.
func (s NodeStatus) Terminal() bool {
	switch s {
	case NodeCompleted, NodeBye, NodeForfeit, NodeCancelled:
		return true
	}
	return false
}

// BracketType distinguishes the parallel node graphs of a tournament.
type BracketType string

const (
	BracketMain        BracketType = "main"
	BracketConsolation BracketType = "consolation"
	BracketThirdPlace  BracketType = "third_place"
)

// Slot is one side of a bracket node. It is either empty, holds an entrant,
// or holds a placeholder for a future occupant: the winner/loser of another
// node, or a final group rank. A void slot will never be occupied (its
// feeder was a bye) and lets the node auto-resolve once the other side
// arrives.
type Slot struct {
	EntrantID *int    `json:"entrant_id,omitempty" db:"entrant_id"`
	WinnerOf  *int    `json:"winner_of,omitempty" db:"winner_of"`
	LoserOf   *int    `json:"loser_of,omitempty" db:"loser_of"`
	GroupName *string `json:"group_name,omitempty" db:"group_name"`
	GroupRank *int    `json:"group_rank,omitempty" db:"group_rank"`
	Void      bool    `json:"void,omitempty" db:"void"`
}

// Filled reports whether an entrant occupies the slot.
func (s *Slot) Filled() bool { return s.EntrantID != nil }

// Settled reports whether the slot needs no further input: it is filled or
// provably never will be.
func (s *Slot) Settled() bool { return s.Filled() || s.Void }

// BracketNode is the atomic unit of competition. Nodes form an arena: ID is
// the node's index within its tournament and the advancement pointers are
// plain ids into that arena, never owning references.
type BracketNode struct {
	ID              int         `json:"id" db:"id"`
	TournamentID    int         `json:"tournament_id" db:"tournament_id"`
	BracketType     BracketType `json:"bracket_type" db:"bracket_type"`
	Round           int         `json:"round" db:"round"`
	RoundName       string      `json:"round_name" db:"round_name"`
	PositionInRound int         `json:"position_in_round" db:"position_in_round"`
	Group           *string     `json:"group,omitempty" db:"group_name"`
	SwissRound      *int        `json:"swiss_round,omitempty" db:"swiss_round"`

	SlotA Slot `json:"slot_a"`
	SlotB Slot `json:"slot_b"`

	Status NodeStatus `json:"status" db:"status"`
	ScoreA *int       `json:"score_a,omitempty" db:"score_a"`
	ScoreB *int       `json:"score_b,omitempty" db:"score_b"`

	WinnerID         *int    `json:"winner_id,omitempty" db:"winner_id"`
	LoserID          *int    `json:"loser_id,omitempty" db:"loser_id"`
	WinnerAdvancesTo *int    `json:"winner_advances_to,omitempty" db:"winner_advances_to"`
	LoserAdvancesTo  *int    `json:"loser_advances_to,omitempty" db:"loser_advances_to"`
	ForfeitEntrantID *int    `json:"forfeiting_entrant_id,omitempty" db:"forfeit_entrant_id"`
	ForfeitReason    *string `json:"forfeit_reason,omitempty" db:"forfeit_reason"`

	// Scheduling metadata, supplied by the officiating collaborator.
	// Stored, never validated beyond non-null-when-scheduled.
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	Venue       *string    `json:"venue,omitempty" db:"venue"`
	Court       *string    `json:"court,omitempty" db:"court"`
}

// ReadyForPlay reports whether both slots hold entrants.
func (n *BracketNode) ReadyForPlay() bool {
	return n.SlotA.Filled() && n.SlotB.Filled()
}

// SlotOf returns the slot currently holding the given entrant, or nil.
func (n *BracketNode) SlotOf(entrantID int) *Slot {
	if n.SlotA.EntrantID != nil && *n.SlotA.EntrantID == entrantID {
		return &n.SlotA
	}
	if n.SlotB.EntrantID != nil && *n.SlotB.EntrantID == entrantID {
		return &n.SlotB
	}
	return nil
}
