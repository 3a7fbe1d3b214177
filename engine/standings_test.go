package engine

import (
	"testing"

	"github.com/courtline/bracket-engine/models"
)

func report(t *testing.T, b *Bracket, x, y, scoreX, scoreY int) {
	t.Helper()
	for _, n := range b.nodes {
		if n.SlotA.EntrantID == nil || n.SlotB.EntrantID == nil {
			continue
		}
		a, c := *n.SlotA.EntrantID, *n.SlotB.EntrantID
		if a == x && c == y {
			if err := b.ReportResult(Result{NodeID: n.ID, ScoreA: scoreX, ScoreB: scoreY}); err != nil {
				t.Fatal(err)
			}
			return
		}
		if a == y && c == x {
			if err := b.ReportResult(Result{NodeID: n.ID, ScoreA: scoreY, ScoreB: scoreX}); err != nil {
				t.Fatal(err)
			}
			return
		}
	}
	t.Fatalf("no node pairs entrants %d and %d", x, y)
}

// Head-to-head among the tied entrants outranks point differential.
func TestTieBreakHeadToHeadBeforeDifferential(t *testing.T) {
	entrants := testEntrants(4)
	b, err := Build(newTestTournament(models.FormatRoundRobin), entrants)
	if err != nil {
		t.Fatal(err)
	}
	w, x, c, d := entrants[0].ID, entrants[1].ID, entrants[2].ID, entrants[3].ID

	report(t, b, w, c, 50, 0) // w piles up differential
	report(t, b, w, d, 50, 0)
	report(t, b, x, w, 21, 20) // but x took the head-to-head
	report(t, b, x, c, 21, 19)
	report(t, b, d, x, 21, 19)
	report(t, b, c, d, 21, 19)

	rows := b.Standings(nil)
	wantOrder := []int{x, w, c, d}
	for i, row := range rows {
		if row.EntrantID != wantOrder[i] {
			t.Fatalf("rank %d is entrant %d, want %d", i+1, row.EntrantID, wantOrder[i])
		}
	}
	if rows[0].Points != 4 || rows[1].Points != 4 {
		t.Fatalf("top two must be tied on points, got %d and %d", rows[0].Points, rows[1].Points)
	}
}

// A three-way cycle leaves head-to-head level; point differential decides.
func TestTieBreakDifferentialOnCycle(t *testing.T) {
	entrants := testEntrants(3)
	b, err := Build(newTestTournament(models.FormatRoundRobin), entrants)
	if err != nil {
		t.Fatal(err)
	}
	a, c, d := entrants[0].ID, entrants[1].ID, entrants[2].ID

	report(t, b, a, c, 21, 10) // a +11
	report(t, b, c, d, 21, 15) // c
	report(t, b, d, a, 21, 19) // d

	rows := b.Standings(nil)
	// Differentials: a +9, c -5, d -4.
	wantOrder := []int{a, d, c}
	for i, row := range rows {
		if row.EntrantID != wantOrder[i] {
			t.Fatalf("rank %d is entrant %d, want %d", i+1, row.EntrantID, wantOrder[i])
		}
	}
}

// Everything level: the original seed decides, lowest first.
func TestTieBreakFallsBackToSeed(t *testing.T) {
	tour := newTestTournament(models.FormatRoundRobin)
	tour.AllowDraws = true
	entrants := testEntrants(3)
	b, err := Build(tour, entrants)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range b.nodes {
		if err := b.ReportResult(Result{NodeID: n.ID, ScoreA: 10, ScoreB: 10}); err != nil {
			t.Fatal(err)
		}
	}
	rows := b.Standings(nil)
	for i, row := range rows {
		if got := b.entrants[row.EntrantID].Seed; got != i+1 {
			t.Fatalf("rank %d has seed %d, want %d", i+1, got, i+1)
		}
	}
}

func TestStandingsRecomputedAfterReopen(t *testing.T) {
	entrants := testEntrants(3)
	b, err := Build(newTestTournament(models.FormatRoundRobin), entrants)
	if err != nil {
		t.Fatal(err)
	}
	a, c := entrants[0].ID, entrants[1].ID
	report(t, b, a, c, 21, 10)

	if rows := b.Standings(nil); rows[0].EntrantID != a {
		t.Fatal("a should lead after beating c")
	}

	var node *models.BracketNode
	for _, n := range b.nodes {
		if n.Status == models.NodeCompleted {
			node = n
		}
	}
	if err := b.Reopen(node.ID); err != nil {
		t.Fatal(err)
	}
	report(t, b, c, a, 21, 10)

	rows := b.Standings(nil)
	if rows[0].EntrantID != c {
		t.Fatal("standings must reflect the corrected result")
	}
	if rows[0].Wins != 1 || rows[0].GamesPlayed != 1 {
		t.Fatalf("corrected row = %+v", rows[0])
	}
}
