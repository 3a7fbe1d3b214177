package engine

import (
	"errors"
	"testing"

	"github.com/courtline/bracket-engine/models"
)

func TestSwissFirstRoundFoldsTheField(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSwiss), testEntrants(8))
	if err != nil {
		t.Fatal(err)
	}
	if b.swissRounds != 3 {
		t.Fatalf("default rounds = %d, want 3", b.swissRounds)
	}
	// Top half against bottom half: 1v5, 2v6, 3v7, 4v8.
	want := [][2]int{{1, 5}, {2, 6}, {3, 7}, {4, 8}}
	open := pendingNodes(b)
	if len(open) != 4 {
		t.Fatalf("round 1 matches = %d, want 4", len(open))
	}
	for i, n := range open {
		gotA := b.entrants[*n.SlotA.EntrantID].Seed
		gotB := b.entrants[*n.SlotB.EntrantID].Seed
		if gotA != want[i][0] || gotB != want[i][1] {
			t.Fatalf("match %d pairs seeds %dv%d, want %dv%d", i, gotA, gotB, want[i][0], want[i][1])
		}
	}
}

func TestSwissPairsByPointsWithoutRematches(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSwiss), testEntrants(8))
	if err != nil {
		t.Fatal(err)
	}
	playOut(t, b)

	if b.currentSwiss != 3 {
		t.Fatalf("generated rounds = %d, want 3", b.currentSwiss)
	}
	if len(b.nodes) != 12 {
		t.Fatalf("nodes = %d, want 12", len(b.nodes))
	}
	seen := make(map[[2]int]bool)
	for _, n := range b.nodes {
		a, c := *n.SlotA.EntrantID, *n.SlotB.EntrantID
		if a > c {
			a, c = c, a
		}
		if seen[[2]int{a, c}] {
			t.Fatalf("pair %d-%d met twice", a, c)
		}
		seen[[2]int{a, c}] = true
	}
	for _, e := range b.Entrants() {
		if e.Record.GamesPlayed != 3 {
			t.Fatalf("entrant %d played %d games, want 3", e.ID, e.Record.GamesPlayed)
		}
	}
	if !b.Completed() {
		t.Fatal("tournament must complete after the last round")
	}
	ranking, err := b.Ranking()
	if err != nil {
		t.Fatal(err)
	}
	if got := b.entrants[ranking[0].EntrantID].Seed; got != 1 {
		t.Fatalf("winner seed = %d, want 1", got)
	}
}

func TestSwissOddFieldRotatesByes(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSwiss), testEntrants(5))
	if err != nil {
		t.Fatal(err)
	}
	playOut(t, b)

	recipients := make(map[int]bool)
	byes := 0
	for _, n := range b.nodes {
		if n.Status != models.NodeBye {
			continue
		}
		byes++
		if recipients[*n.WinnerID] {
			t.Fatalf("entrant %d received two byes", *n.WinnerID)
		}
		recipients[*n.WinnerID] = true
	}
	if byes != 3 {
		t.Fatalf("byes = %d, want one per round (3)", byes)
	}
	// A bye counts as a scoreless win in the table.
	for id := range recipients {
		if b.entrants[id].Record.Wins < 1 {
			t.Fatalf("bye recipient %d has no win on record", id)
		}
	}
}

func TestSwissUnresolvablePairing(t *testing.T) {
	tour := newTestTournament(models.FormatSwiss)
	tour.SwissRounds = 2
	b, err := Build(tour, testEntrants(2))
	if err != nil {
		t.Fatal(err)
	}
	n := pendingNodes(b)[0]
	reportWin(t, b, n, *n.SlotA.EntrantID)

	if b.Completed() {
		t.Fatal("tournament must not complete with a round outstanding")
	}
	if _, err := b.AdvanceSwissRound(); !errors.Is(err, ErrUnresolvablePairing) {
		t.Fatalf("got %v, want ErrUnresolvablePairing", err)
	}
}

func TestAdvanceSwissRoundWhileRoundOpen(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSwiss), testEntrants(4))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.AdvanceSwissRound(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("got %v, want ErrNotReady", err)
	}
}
