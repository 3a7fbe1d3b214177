package engine

import (
	"fmt"
	"sync"

	"github.com/dominikbraun/graph"

	"github.com/courtline/bracket-engine/models"
)

// Bracket is the in-memory node arena for one tournament. Node IDs are
// indexes into the arena and all advancement pointers are plain ids, so the
// graph can be validated acyclic at build time and serialized without
// chasing references.
//
// All mutation happens under a single writer lock, which gives every node
// transition check-and-set semantics: the loser of a racing completion sees
// the terminal status and gets ErrNodeAlreadyResolved, never a silent
// overwrite. Reads (standings, snapshots) take the read lock and therefore
// observe a consistent, fully-propagated node set.
type Bracket struct {
	mu sync.RWMutex

	tournament *models.Tournament
	format     BracketFormat
	entrants   map[int]*models.Entrant
	seeded     []*models.Entrant // sorted by seed, 1 first
	nodes      []*models.BracketNode

	emitter      Emitter
	cancelled    bool
	completed    bool
	finalRanking []models.Placement

	// Special node ids, -1 when absent.
	finalNode       int
	thirdPlaceNode  int
	grandFinal      int
	grandFinalReset int

	swissRounds  int // total rounds for swiss, 0 otherwise
	currentSwiss int // highest generated swiss round

	groupsResolved bool // knockout slots filled from final group tables
}

func newBracket(t *models.Tournament, f BracketFormat, seeded []*models.Entrant) *Bracket {
	byID := make(map[int]*models.Entrant, len(seeded))
	for _, e := range seeded {
		byID[e.ID] = e
	}
	return &Bracket{
		tournament:      t,
		format:          f,
		entrants:        byID,
		seeded:          seeded,
		finalNode:       -1,
		thirdPlaceNode:  -1,
		grandFinal:      -1,
		grandFinalReset: -1,
	}
}

// SetEmitter attaches an event sink. Pass nil to silence the bracket.
func (b *Bracket) SetEmitter(e Emitter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.emitter = e
}

func (b *Bracket) emit(ev Event) {
	if b.emitter != nil {
		ev.TournamentID = b.tournament.ID
		b.emitter.Emit(ev)
	}
}

// Tournament returns the tournament this bracket was built for.
func (b *Bracket) Tournament() *models.Tournament { return b.tournament }

// Format returns the strategy that built this bracket.
func (b *Bracket) Format() BracketFormat { return b.format }

// newNode appends a node to the arena and returns it. Build-time only.
func (b *Bracket) newNode(bt models.BracketType, round, pos int, name string) *models.BracketNode {
	n := &models.BracketNode{
		ID:              len(b.nodes),
		TournamentID:    b.tournament.ID,
		BracketType:     bt,
		Round:           round,
		RoundName:       name,
		PositionInRound: pos,
		Status:          models.NodeAwaiting,
	}
	b.nodes = append(b.nodes, n)
	return n
}

func (b *Bracket) node(id int) *models.BracketNode {
	if id < 0 || id >= len(b.nodes) {
		return nil
	}
	return b.nodes[id]
}

// Node returns a copy of the node with the given id.
func (b *Bracket) Node(id int) (models.BracketNode, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := b.node(id)
	if n == nil {
		return models.BracketNode{}, ErrNodeNotFound
	}
	return *n, nil
}

// Nodes returns a consistent snapshot of the whole arena.
func (b *Bracket) Nodes() []models.BracketNode {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.BracketNode, len(b.nodes))
	for i, n := range b.nodes {
		out[i] = *n
	}
	return out
}

// Entrants returns a snapshot of all entrants with their current records.
func (b *Bracket) Entrants() []models.Entrant {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Entrant, 0, len(b.seeded))
	for _, e := range b.seeded {
		out = append(out, *e)
	}
	return out
}

// Started reports whether any node has left its build-time state. Byes
// pre-resolved at build time do not count as play having started.
func (b *Bracket) Started() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.started()
}

func (b *Bracket) started() bool {
	for _, n := range b.nodes {
		switch n.Status {
		case models.NodeScheduled, models.NodeInProgress, models.NodeCompleted, models.NodeForfeit:
			return true
		}
	}
	return false
}

// Completed reports whether the ranking finalizer has signed off.
func (b *Bracket) Completed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.completed
}

// Cancel stops the tournament. Transitions already committed stay; any
// further transition is rejected with ErrTournamentCancelled.
func (b *Bracket) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelled = true
}

// validateAcyclic asserts that following winner/loser advancement pointers
// can never loop. The winners→losers flow in double elimination is one
// directional by construction, so a cycle always means a builder bug; we
// fail the build rather than ship a graph that can deadlock propagation.
func (b *Bracket) validateAcyclic() error {
	g := graph.New(graph.IntHash, graph.Directed(), graph.PreventCycles())
	for _, n := range b.nodes {
		_ = g.AddVertex(n.ID)
	}
	for _, n := range b.nodes {
		if n.WinnerAdvancesTo != nil {
			if err := g.AddEdge(n.ID, *n.WinnerAdvancesTo); err != nil {
				return fmt.Errorf("advancement graph: node %d -> %d: %w", n.ID, *n.WinnerAdvancesTo, err)
			}
		}
		if n.LoserAdvancesTo != nil {
			if err := g.AddEdge(n.ID, *n.LoserAdvancesTo); err != nil {
				// Parallel winner/loser edges to the same target are fine.
				if err != graph.ErrEdgeAlreadyExists {
					return fmt.Errorf("advancement graph: node %d -> %d: %w", n.ID, *n.LoserAdvancesTo, err)
				}
			}
		}
	}
	return nil
}

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func entrant(e *models.Entrant) *int {
	if e == nil {
		return nil
	}
	return intPtr(e.ID)
}
