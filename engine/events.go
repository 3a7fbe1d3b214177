package engine

import "github.com/courtline/bracket-engine/models"

// EventType enumerates the transitions the engine announces to the outside.
// The contract is the event's field set, not its serialization.
type EventType string

const (
	EventNodeScheduled         EventType = "NodeScheduled"
	EventNodeCompleted         EventType = "NodeCompleted"
	EventEntrantEliminated     EventType = "EntrantEliminated"
	EventGroupStandingsUpdated EventType = "GroupStandingsUpdated"
	EventTournamentCompleted   EventType = "TournamentCompleted"
)

// Event is emitted synchronously on state transitions. Consumers (the
// notification system, the websocket hub) decide delivery.
type Event struct {
	Type         EventType          `json:"type"`
	TournamentID int                `json:"tournament_id"`
	NodeID       *int               `json:"node_id,omitempty"`
	WinnerID     *int               `json:"winner_id,omitempty"`
	LoserID      *int               `json:"loser_id,omitempty"`
	EntrantID    *int               `json:"entrant_id,omitempty"`
	Group        *string            `json:"group,omitempty"`
	Ranking      []models.Placement `json:"ranking,omitempty"`
}

// Emitter receives engine events. Emit must not block; the engine calls it
// while holding the bracket lock.
type Emitter interface {
	Emit(event Event)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(Event)

func (f EmitterFunc) Emit(event Event) { f(event) }
