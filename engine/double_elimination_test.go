package engine

import (
	"testing"

	"github.com/courtline/bracket-engine/models"
)

func TestDoubleEliminationStructure(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatDoubleElimination), testEntrants(8))
	if err != nil {
		t.Fatal(err)
	}

	var wb, lb int
	lbRounds := 0
	for _, n := range b.nodes {
		switch n.BracketType {
		case models.BracketMain:
			wb++
		case models.BracketConsolation:
			lb++
			if n.Round > lbRounds {
				lbRounds = n.Round
			}
		}
	}
	// 7 winners nodes + grand final; losers bracket has 2*(R-1) rounds.
	if wb != 8 {
		t.Fatalf("main bracket nodes = %d, want 8", wb)
	}
	if lb != 6 {
		t.Fatalf("losers bracket nodes = %d, want 6", lb)
	}
	if lbRounds != 4 {
		t.Fatalf("losers bracket rounds = %d, want 4", lbRounds)
	}
}

func TestDoubleEliminationLoserDropsIn(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatDoubleElimination), testEntrants(8))
	if err != nil {
		t.Fatal(err)
	}
	first := pendingNodes(b)[0]
	loserID := *first.SlotB.EntrantID
	reportWin(t, b, first, *first.SlotA.EntrantID)

	if first.LoserAdvancesTo == nil {
		t.Fatal("winners round 1 node has no loser destination")
	}
	lb := b.node(*first.LoserAdvancesTo)
	if lb.BracketType != models.BracketConsolation {
		t.Fatalf("loser dropped into %q bracket, want consolation", lb.BracketType)
	}
	if lb.SlotOf(loserID) == nil {
		t.Fatal("loser did not arrive in the losers bracket slot")
	}
}

// Six entrants pad the winners bracket to eight. The top two seeds sit out
// round one, and the void loser slots of their byes cascade into the losers
// bracket, whose first round resolves as byes instead of phantom matches.
func TestDoubleEliminationNonPowerOfTwo(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatDoubleElimination), testEntrants(6))
	if err != nil {
		t.Fatal(err)
	}
	if got := len(pendingNodes(b)); got != 2 {
		t.Fatalf("playable first-round matches = %d, want 2", got)
	}

	playOut(t, b) // better seed always wins
	if !b.Completed() {
		t.Fatal("bracket did not complete")
	}

	// The losers of the two real first-round matches (seeds 5 and 6) walk
	// through losers round 1 on byes.
	for _, n := range b.nodes {
		if n.BracketType != models.BracketConsolation || n.Round != 1 {
			continue
		}
		if n.Status != models.NodeBye {
			t.Fatalf("losers round 1 node %d status = %q, want bye", n.ID, n.Status)
		}
		if seed := b.entrants[*n.WinnerID].Seed; seed != 5 && seed != 6 {
			t.Fatalf("losers round 1 bye advanced seed %d, want 5 or 6", seed)
		}
	}

	// Everyone but the champion is beaten exactly twice, and no node was
	// decided with an empty slot.
	completed := 0
	for _, n := range b.nodes {
		if n.Status != models.NodeCompleted {
			continue
		}
		completed++
		if n.SlotA.EntrantID == nil || n.SlotB.EntrantID == nil {
			t.Fatalf("node %d completed with an empty slot", n.ID)
		}
	}
	if completed != 10 {
		t.Fatalf("completed matches = %d, want 10", completed)
	}
	for _, e := range b.entrants {
		want := 2
		if e.Seed == 1 {
			want = 0
		}
		if e.Record.Losses != want {
			t.Fatalf("seed %d losses = %d, want %d", e.Seed, e.Record.Losses, want)
		}
	}

	ranking, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	for i, wantSeed := range []int{1, 2, 3} {
		if got := b.entrants[ranking[i].EntrantID].Seed; got != wantSeed {
			t.Fatalf("position %d has seed %d, want %d", i+1, got, wantSeed)
		}
	}
}

// An entrant is only out after a second loss: the winners-bracket champion
// must be beaten twice in the grand final.
func TestGrandFinalBracketReset(t *testing.T) {
	tour := newTestTournament(models.FormatDoubleElimination)
	tour.GrandFinalReset = true
	b, err := Build(tour, testEntrants(4))
	if err != nil {
		t.Fatal(err)
	}
	playUntilGrandFinal(t, b)

	gf := b.node(b.grandFinal)
	if gf.Status != models.NodePending {
		t.Fatalf("grand final status = %q, want pending", gf.Status)
	}
	wbChamp := *gf.SlotA.EntrantID
	lbChamp := *gf.SlotB.EntrantID

	// The losers-bracket champion takes game one, forcing the reset.
	reportWin(t, b, gf, lbChamp)
	reset := b.node(b.grandFinalReset)
	if reset.Status != models.NodePending {
		t.Fatalf("reset status = %q, want pending", reset.Status)
	}
	if b.Completed() {
		t.Fatal("tournament must not complete while the reset is open")
	}

	reportWin(t, b, reset, wbChamp)
	ranking, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if ranking[0].EntrantID != wbChamp || ranking[1].EntrantID != lbChamp {
		t.Fatalf("podium = %d, %d; want %d, %d", ranking[0].EntrantID, ranking[1].EntrantID, wbChamp, lbChamp)
	}
}

func TestGrandFinalResetCancelledWhenChampionHolds(t *testing.T) {
	tour := newTestTournament(models.FormatDoubleElimination)
	tour.GrandFinalReset = true
	b, err := Build(tour, testEntrants(4))
	if err != nil {
		t.Fatal(err)
	}
	playUntilGrandFinal(t, b)

	gf := b.node(b.grandFinal)
	wbChamp := *gf.SlotA.EntrantID
	reportWin(t, b, gf, wbChamp)

	reset := b.node(b.grandFinalReset)
	if reset.Status != models.NodeCancelled {
		t.Fatalf("reset status = %q, want cancelled", reset.Status)
	}
	if !b.Completed() {
		t.Fatal("tournament should complete without a reset game")
	}
	ranking, err := b.Ranking()
	if err != nil {
		t.Fatal(err)
	}
	if ranking[0].EntrantID != wbChamp {
		t.Fatalf("champion = %d, want %d", ranking[0].EntrantID, wbChamp)
	}
}

func TestDoubleEliminationRanking(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatDoubleElimination), testEntrants(8))
	if err != nil {
		t.Fatal(err)
	}
	playOut(t, b) // better seed always wins

	ranking, err := b.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	if len(ranking) != 8 {
		t.Fatalf("ranking has %d entries, want 8", len(ranking))
	}
	for i, wantSeed := range []int{1, 2, 3} {
		got := b.entrants[ranking[i].EntrantID].Seed
		if got != wantSeed {
			t.Fatalf("position %d has seed %d, want %d", i+1, got, wantSeed)
		}
	}
	// A second loss is what eliminates: everyone below the champion and
	// runner-up lost exactly twice.
	for _, p := range ranking[2:] {
		if losses := b.entrants[p.EntrantID].Record.Losses; losses != 2 {
			t.Fatalf("entrant %d eliminated with %d losses, want 2", p.EntrantID, losses)
		}
	}
}

func TestDoubleEliminationTwoEntrants(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatDoubleElimination), testEntrants(2))
	if err != nil {
		t.Fatal(err)
	}
	first := pendingNodes(b)[0]
	reportWin(t, b, first, *first.SlotA.EntrantID)

	gf := b.node(b.grandFinal)
	if !gf.ReadyForPlay() || gf.Status != models.NodePending {
		t.Fatal("grand final rematch not set up")
	}
	reportWin(t, b, gf, *gf.SlotB.EntrantID)
	if b.Completed() {
		return
	}
	t.Fatal("tournament did not complete")
}

// playUntilGrandFinal resolves everything except the grand final (and its
// reset), better seed winning.
func playUntilGrandFinal(t *testing.T, b *Bracket) {
	t.Helper()
	for rounds := 0; rounds < 100; rounds++ {
		progressed := false
		for _, n := range b.nodes {
			if n.ID == b.grandFinal || n.ID == b.grandFinalReset {
				continue
			}
			if n.Status != models.NodePending {
				continue
			}
			a := b.entrants[*n.SlotA.EntrantID]
			c := b.entrants[*n.SlotB.EntrantID]
			winner := a.ID
			if c.Seed < a.Seed {
				winner = c.ID
			}
			reportWin(t, b, n, winner)
			progressed = true
		}
		if !progressed {
			return
		}
	}
	t.Fatal("bracket did not reach the grand final")
}
