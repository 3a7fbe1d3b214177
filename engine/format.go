package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/courtline/bracket-engine/models"
)

// BracketFormat is the strategy behind one tournament type. Build
// constructs the node graph, NextRoundPairing lazily generates a round
// (Swiss only; other formats build eagerly and return nil), and RanksFrom
// derives the final placement list from a fully terminal node set.
type BracketFormat interface {
	Name() models.TournamentFormat
	build(b *Bracket) error
	NextRoundPairing(b *Bracket) ([]*models.BracketNode, error)
	RanksFrom(b *Bracket) ([]models.Placement, error)
}

// FormatFor resolves the strategy for a tournament format.
func FormatFor(f models.TournamentFormat) (BracketFormat, error) {
	switch f {
	case models.FormatSingleElimination:
		return &singleElimination{}, nil
	case models.FormatDoubleElimination:
		return &doubleElimination{}, nil
	case models.FormatRoundRobin:
		return &roundRobin{}, nil
	case models.FormatSwiss:
		return &swiss{}, nil
	case models.FormatGroupKnockout:
		return &groupKnockout{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Build constructs the bracket for a tournament from its confirmed
// entrants. It validates entrant count and seeding before any node is
// created, pre-resolves byes, and rejects graphs with advancement cycles.
//
// Build is pure with respect to its inputs: calling it twice with the same
// tournament and entrant set yields an isomorphic graph.
func Build(t *models.Tournament, entrants []*models.Entrant) (*Bracket, error) {
	format, err := FormatFor(t.Format)
	if err != nil {
		return nil, err
	}

	minTeams := t.MinTeams
	if minTeams < 2 {
		minTeams = 2
	}
	if len(entrants) < minTeams {
		return nil, fmt.Errorf("%w: have %d, need at least %d", ErrInsufficientEntrants, len(entrants), minTeams)
	}
	if t.MaxTeams > 0 && len(entrants) > t.MaxTeams {
		return nil, fmt.Errorf("%w: %d entrants exceeds maximum of %d", ErrInvalidFormatOptions, len(entrants), t.MaxTeams)
	}

	seeded := make([]*models.Entrant, len(entrants))
	copy(seeded, entrants)
	sort.Slice(seeded, func(i, j int) bool { return seeded[i].Seed < seeded[j].Seed })
	for i, e := range seeded {
		if e.Seed != i+1 {
			return nil, fmt.Errorf("%w: seeds must be contiguous 1..%d, found %d at position %d",
				ErrInvalidFormatOptions, len(seeded), e.Seed, i+1)
		}
	}

	b := newBracket(t, format, seeded)
	if err := format.build(b); err != nil {
		return nil, err
	}
	if err := b.validateAcyclic(); err != nil {
		return nil, err
	}
	return b, nil
}

// numRounds is the height of an elimination tree over n entrants.
func numRounds(n int) int {
	return int(math.Ceil(math.Log2(float64(n))))
}

// roundName labels an elimination round by how many teams remain in it.
func roundName(round, totalRounds int) string {
	remaining := 1 << uint(totalRounds-round+1)
	switch remaining {
	case 2:
		return "Final"
	case 4:
		return "Semifinal"
	case 8:
		return "Quarterfinal"
	case 16:
		return "Round of 16"
	case 32:
		return "Round of 32"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}

// groupName labels groups A, B, C, ...
func groupName(i int) string {
	return string(rune('A' + i))
}
