package engine

import (
	"errors"
	"testing"

	"github.com/courtline/bracket-engine/models"
)

func newGroupKnockoutTournament() *models.Tournament {
	tour := newTestTournament(models.FormatGroupKnockout)
	tour.GroupCount = 2
	tour.QualifiersPerGroup = 2
	return tour
}

func TestGroupKnockoutSnakeSeeding(t *testing.T) {
	entrants := testEntrants(8)
	b, err := Build(newGroupKnockoutTournament(), entrants)
	if err != nil {
		t.Fatal(err)
	}
	// Snake over two groups: A gets seeds 1,4,5,8; B gets 2,3,6,7.
	wantGroup := map[int]string{1: "A", 2: "B", 3: "B", 4: "A", 5: "A", 6: "B", 7: "B", 8: "A"}
	for _, e := range entrants {
		if e.Group == nil || *e.Group != wantGroup[e.Seed] {
			t.Fatalf("seed %d in group %v, want %s", e.Seed, e.Group, wantGroup[e.Seed])
		}
	}

	groupNodes := 0
	for _, n := range b.nodes {
		if n.Group != nil {
			groupNodes++
		}
	}
	if groupNodes != 12 { // two groups of four, all-play-all
		t.Fatalf("group nodes = %d, want 12", groupNodes)
	}
}

func TestGroupKnockoutAwaitsGroupCompletion(t *testing.T) {
	b, err := Build(newGroupKnockoutTournament(), testEntrants(8))
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range b.nodes {
		if n.Group == nil && n.Status != models.NodeAwaiting {
			t.Fatalf("knockout node %d status = %q before groups finish", n.ID, n.Status)
		}
	}
}

func TestGroupKnockoutQualifierResolution(t *testing.T) {
	b, err := Build(newGroupKnockoutTournament(), testEntrants(8))
	if err != nil {
		t.Fatal(err)
	}
	var eliminated []int
	b.SetEmitter(EmitterFunc(func(ev Event) {
		if ev.Type == EventEntrantEliminated {
			eliminated = append(eliminated, *ev.EntrantID)
		}
	}))

	// Resolve the group stage only, better seed winning.
	for _, n := range b.nodes {
		if n.Group == nil || n.Status != models.NodePending {
			continue
		}
		a := b.entrants[*n.SlotA.EntrantID]
		c := b.entrants[*n.SlotB.EntrantID]
		winner := a.ID
		if c.Seed < a.Seed {
			winner = c.ID
		}
		reportWin(t, b, n, winner)
	}

	if !b.groupsResolved {
		t.Fatal("knockout slots not resolved after group stage")
	}
	semis := make([]*models.BracketNode, 0)
	for _, n := range b.nodes {
		if n.Group == nil && n.Round == 1 {
			semis = append(semis, n)
		}
	}
	if len(semis) != 2 {
		t.Fatalf("semifinals = %d, want 2", len(semis))
	}
	// Cross pairing: A1 v B2, B1 v A2 (seeds 1v3 and 2v4 here).
	s1a := b.entrants[*semis[0].SlotA.EntrantID].Seed
	s1b := b.entrants[*semis[0].SlotB.EntrantID].Seed
	s2a := b.entrants[*semis[1].SlotA.EntrantID].Seed
	s2b := b.entrants[*semis[1].SlotB.EntrantID].Seed
	if s1a != 1 || s1b != 3 || s2a != 2 || s2b != 4 {
		t.Fatalf("semifinal pairing %dv%d, %dv%d; want 1v3, 2v4", s1a, s1b, s2a, s2b)
	}
	for _, n := range semis {
		if n.Status != models.NodePending {
			t.Fatalf("semifinal %d status = %q, want pending", n.ID, n.Status)
		}
	}

	// The four non-qualifiers are out the moment the tables are final.
	if len(eliminated) != 4 {
		t.Fatalf("eliminated = %d entrants, want 4", len(eliminated))
	}
	for _, id := range eliminated {
		e := b.entrants[id]
		if e.Seed <= 4 {
			t.Fatalf("seed %d should have qualified", e.Seed)
		}
		if e.EliminationRound == nil || *e.EliminationRound != "Group Stage" {
			t.Fatalf("entrant %d elimination round = %v", id, e.EliminationRound)
		}
	}
}

func TestGroupKnockoutFullRun(t *testing.T) {
	b, err := Build(newGroupKnockoutTournament(), testEntrants(8))
	if err != nil {
		t.Fatal(err)
	}
	playOut(t, b)

	ranking, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if len(ranking) != 8 {
		t.Fatalf("ranking has %d entries, want 8", len(ranking))
	}
	for i, p := range ranking {
		if got := b.entrants[p.EntrantID].Seed; got != i+1 {
			t.Fatalf("position %d has seed %d, want %d", i+1, got, i+1)
		}
	}
}

func TestGroupStandingsPerGroup(t *testing.T) {
	b, err := Build(newGroupKnockoutTournament(), testEntrants(8))
	if err != nil {
		t.Fatal(err)
	}
	playOut(t, b)

	a := "A"
	rows := b.Standings(&a)
	if len(rows) != 4 {
		t.Fatalf("group A rows = %d, want 4", len(rows))
	}
	// Group play only: three games each, knockout results excluded.
	for _, row := range rows {
		if row.GamesPlayed != 3 {
			t.Fatalf("entrant %d group games = %d, want 3", row.EntrantID, row.GamesPlayed)
		}
	}
	if got := b.entrants[rows[0].EntrantID].Seed; got != 1 {
		t.Fatalf("group A winner seed = %d, want 1", got)
	}
}

func TestGroupKnockoutValidation(t *testing.T) {
	tour := newGroupKnockoutTournament()
	if _, err := Build(tour, testEntrants(3)); !errors.Is(err, ErrInsufficientEntrants) {
		t.Fatalf("got %v, want ErrInsufficientEntrants", err)
	}
	tour = newGroupKnockoutTournament()
	tour.QualifiersPerGroup = 3
	if _, err := Build(tour, testEntrants(4)); !errors.Is(err, ErrInvalidFormatOptions) {
		t.Fatalf("got %v, want ErrInvalidFormatOptions", err)
	}
}
