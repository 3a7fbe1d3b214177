package engine

import (
	"sort"

	"github.com/courtline/bracket-engine/models"
)

// Finalize derives the final placement list once every node is terminal.
// It stamps FinalPosition on every entrant and marks the bracket complete.
// Until the last result is in it returns ErrNotReady; once complete it is
// idempotent and keeps returning the same ranking.
func (b *Bracket) Finalize() ([]models.Placement, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.completed {
		return b.finalRanking, nil
	}
	if b.cancelled {
		return nil, ErrTournamentCancelled
	}
	return b.finalizeLocked()
}

// Ranking returns the final placements, or ErrNotReady before completion.
func (b *Bracket) Ranking() ([]models.Placement, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.completed {
		return nil, ErrNotReady
	}
	return b.finalRanking, nil
}

func (b *Bracket) finalizeLocked() ([]models.Placement, error) {
	if !b.allNodesTerminal() {
		return nil, ErrNotReady
	}
	if b.tournament.Format == models.FormatSwiss && b.currentSwiss < b.swissRounds {
		return nil, ErrNotReady
	}
	ranking, err := b.format.RanksFrom(b)
	if err != nil {
		return nil, err
	}
	for _, p := range ranking {
		pos := p.Position
		b.entrants[p.EntrantID].FinalPosition = &pos
	}
	b.completed = true
	b.finalRanking = ranking
	b.emit(Event{Type: EventTournamentCompleted, Ranking: ranking})
	return ranking, nil
}

// appendByExitDepth ranks every not-yet-placed entrant by the deepest
// round of the given bracket they lost in (later exits rank higher), ties
// broken by seed, and appends them after the existing placements.
func appendByExitDepth(b *Bracket, placements []models.Placement, placed map[int]bool, bt models.BracketType) []models.Placement {
	exit := make(map[int]int)
	for _, n := range b.nodes {
		if n.BracketType != bt || n.LoserID == nil {
			continue
		}
		if n.Round > exit[*n.LoserID] {
			exit[*n.LoserID] = n.Round
		}
	}

	rest := make([]*models.Entrant, 0)
	for _, e := range b.seeded {
		if !placed[e.ID] {
			rest = append(rest, e)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		if exit[rest[i].ID] != exit[rest[j].ID] {
			return exit[rest[i].ID] > exit[rest[j].ID]
		}
		return rest[i].Seed < rest[j].Seed
	})
	for _, e := range rest {
		placements = append(placements, models.Placement{Position: len(placements) + 1, EntrantID: e.ID})
	}
	return placements
}
