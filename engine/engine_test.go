package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/courtline/bracket-engine/models"
)

func newTestTournament(format models.TournamentFormat) *models.Tournament {
	return &models.Tournament{
		ID:     1,
		Name:   "Spring Invitational",
		Format: format,
		Status: models.StatusInProgress,
	}
}

// testEntrants returns n entrants with ids 101..100+n and seeds 1..n.
func testEntrants(n int) []*models.Entrant {
	out := make([]*models.Entrant, n)
	for i := 0; i < n; i++ {
		out[i] = &models.Entrant{
			ID:          101 + i,
			TeamID:      201 + i,
			DisplayName: fmt.Sprintf("Team %d", i+1),
			Seed:        i + 1,
			Status:      models.EntrantApproved,
		}
	}
	return out
}

// reportWin resolves a node in favor of the given entrant with a 21-15
// score.
func reportWin(t *testing.T, b *Bracket, n *models.BracketNode, winnerID int) {
	t.Helper()
	res := Result{NodeID: n.ID, ScoreA: 21, ScoreB: 15}
	if n.SlotB.EntrantID != nil && *n.SlotB.EntrantID == winnerID {
		res.ScoreA, res.ScoreB = 15, 21
	}
	if err := b.ReportResult(res); err != nil {
		t.Fatalf("report node %d: %v", n.ID, err)
	}
}

// playOut resolves every open node in favor of the better seed until the
// bracket completes or stops producing playable nodes.
func playOut(t *testing.T, b *Bracket) {
	t.Helper()
	for rounds := 0; rounds < 100; rounds++ {
		progressed := false
		for _, n := range b.nodes {
			if n.Status != models.NodePending && n.Status != models.NodeInProgress {
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
	t.Fatal("bracket did not settle after 100 passes")
}

func pendingNodes(b *Bracket) []*models.BracketNode {
	out := make([]*models.BracketNode, 0)
	for _, n := range b.nodes {
		if n.Status == models.NodePending {
			out = append(out, n)
		}
	}
	return out
}

func countStatus(b *Bracket, s models.NodeStatus) int {
	c := 0
	for _, n := range b.nodes {
		if n.Status == s {
			c++
		}
	}
	return c
}

func TestPropagationFillsExactlyOneSlot(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSingleElimination), testEntrants(8))
	if err != nil {
		t.Fatal(err)
	}
	first := pendingNodes(b)[0]
	winnerID := *first.SlotA.EntrantID
	reportWin(t, b, first, winnerID)

	down := b.node(*first.WinnerAdvancesTo)
	inA := down.SlotA.EntrantID != nil && *down.SlotA.EntrantID == winnerID
	inB := down.SlotB.EntrantID != nil && *down.SlotB.EntrantID == winnerID
	if inA == inB {
		t.Fatalf("winner must occupy exactly one downstream slot, got A=%v B=%v", inA, inB)
	}
	wantStatus := models.NodeAwaiting
	if down.ReadyForPlay() {
		wantStatus = models.NodePending
	}
	if down.Status != wantStatus {
		t.Fatalf("downstream status = %q, want %q", down.Status, wantStatus)
	}
}

func TestNoDoubleResolution(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSingleElimination), testEntrants(4))
	if err != nil {
		t.Fatal(err)
	}
	n := pendingNodes(b)[0]
	reportWin(t, b, n, *n.SlotA.EntrantID)

	before := b.entrants[*n.SlotA.EntrantID].Record
	err = b.ReportResult(Result{NodeID: n.ID, ScoreA: 0, ScoreB: 21})
	if !errors.Is(err, ErrNodeAlreadyResolved) {
		t.Fatalf("second report: got %v, want ErrNodeAlreadyResolved", err)
	}
	if b.entrants[*n.SlotA.EntrantID].Record != before {
		t.Fatal("rejected report must leave records unchanged")
	}
}

func TestForfeitAwardsWinAndPropagates(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSingleElimination), testEntrants(4))
	if err != nil {
		t.Fatal(err)
	}
	n := pendingNodes(b)[0]
	loserID := *n.SlotA.EntrantID
	winnerID := *n.SlotB.EntrantID

	err = b.ReportResult(Result{NodeID: n.ID, ForfeitBy: &loserID, Reason: "no-show"})
	if err != nil {
		t.Fatal(err)
	}
	if n.Status != models.NodeForfeit {
		t.Fatalf("status = %q, want forfeit", n.Status)
	}
	if n.ScoreA != nil || n.ScoreB != nil {
		t.Fatal("forfeit must not record a game score")
	}
	if b.entrants[winnerID].Record.Wins != 1 || b.entrants[loserID].Record.Losses != 1 {
		t.Fatal("forfeit must count as a win and a loss")
	}
	down := b.node(*n.WinnerAdvancesTo)
	if down.SlotOf(winnerID) == nil {
		t.Fatal("forfeit winner was not propagated downstream")
	}
	if got := *n.ForfeitReason; got != "no-show" {
		t.Fatalf("forfeit reason = %q", got)
	}
}

func TestConcurrentReportsResolveOnce(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSingleElimination), testEntrants(8))
	if err != nil {
		t.Fatal(err)
	}
	n := pendingNodes(b)[0]

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- b.ReportResult(Result{NodeID: n.ID, ScoreA: 21, ScoreB: i})
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok, resolved int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrNodeAlreadyResolved):
			resolved++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || resolved != attempts-1 {
		t.Fatalf("got %d successes and %d rejections, want 1 and %d", ok, resolved, attempts-1)
	}
	if b.entrants[*n.SlotA.EntrantID].Record.GamesPlayed != 1 {
		t.Fatal("winner's record must reflect exactly one game")
	}
}

func TestScheduleAndStartTransitions(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSingleElimination), testEntrants(4))
	if err != nil {
		t.Fatal(err)
	}
	n := pendingNodes(b)[0]
	at := time.Now().Add(-time.Hour)

	if err := b.Schedule(n.ID, "", "", at); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("empty venue: got %v, want ErrInvalidTransition", err)
	}
	if err := b.Schedule(n.ID, "Main Hall", "Court 1", at); err != nil {
		t.Fatal(err)
	}
	if n.Status != models.NodeScheduled || n.Venue == nil || *n.Venue != "Main Hall" {
		t.Fatalf("node not scheduled correctly: %+v", n)
	}
	if err := b.Schedule(n.ID, "Main Hall", "", at); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("double schedule: got %v, want ErrInvalidTransition", err)
	}
	if err := b.Start(n.ID, time.Now()); err != nil {
		t.Fatal(err)
	}
	if n.Status != models.NodeInProgress {
		t.Fatalf("status = %q, want in_progress", n.Status)
	}
	// Starting again is a no-op.
	if err := b.Start(n.ID, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := b.ReportResult(Result{NodeID: n.ID, ScoreA: 21, ScoreB: 12}); err != nil {
		t.Fatal(err)
	}
	if err := b.Start(n.ID, time.Now()); !errors.Is(err, ErrNodeAlreadyResolved) {
		t.Fatalf("start after completion: got %v, want ErrNodeAlreadyResolved", err)
	}
}

func TestStartBeforeScheduledTime(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSingleElimination), testEntrants(4))
	if err != nil {
		t.Fatal(err)
	}
	n := pendingNodes(b)[0]
	at := time.Now().Add(time.Hour)
	if err := b.Schedule(n.ID, "Main Hall", "", at); err != nil {
		t.Fatal(err)
	}
	if err := b.Start(n.ID, time.Now()); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("early start: got %v, want ErrInvalidTransition", err)
	}
}

func TestCancelledTournamentRejectsTransitions(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSingleElimination), testEntrants(4))
	if err != nil {
		t.Fatal(err)
	}
	n := pendingNodes(b)[0]
	b.Cancel()

	if err := b.ReportResult(Result{NodeID: n.ID, ScoreA: 21, ScoreB: 12}); !errors.Is(err, ErrTournamentCancelled) {
		t.Fatalf("got %v, want ErrTournamentCancelled", err)
	}
	if err := b.Schedule(n.ID, "Main Hall", "", time.Now()); !errors.Is(err, ErrTournamentCancelled) {
		t.Fatalf("got %v, want ErrTournamentCancelled", err)
	}
	if _, err := b.Finalize(); !errors.Is(err, ErrTournamentCancelled) {
		t.Fatalf("got %v, want ErrTournamentCancelled", err)
	}
}

func TestDrawsRejectedInElimination(t *testing.T) {
	tour := newTestTournament(models.FormatSingleElimination)
	tour.AllowDraws = true
	b, err := Build(tour, testEntrants(4))
	if err != nil {
		t.Fatal(err)
	}
	n := pendingNodes(b)[0]
	err = b.ReportResult(Result{NodeID: n.ID, ScoreA: 10, ScoreB: 10})
	if !errors.Is(err, ErrInvalidResult) {
		t.Fatalf("tie in elimination: got %v, want ErrInvalidResult", err)
	}
}

func TestEvents(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSingleElimination), testEntrants(4))
	if err != nil {
		t.Fatal(err)
	}
	var events []Event
	b.SetEmitter(EmitterFunc(func(ev Event) { events = append(events, ev) }))

	playOut(t, b)

	var completed, eliminated, finished int
	for _, ev := range events {
		switch ev.Type {
		case EventNodeCompleted:
			completed++
		case EventEntrantEliminated:
			eliminated++
		case EventTournamentCompleted:
			finished++
		}
		if ev.TournamentID != 1 {
			t.Fatalf("event missing tournament id: %+v", ev)
		}
	}
	if completed != 3 {
		t.Fatalf("NodeCompleted events = %d, want 3", completed)
	}
	if eliminated != 3 {
		t.Fatalf("EntrantEliminated events = %d, want 3", eliminated)
	}
	if finished != 1 {
		t.Fatalf("TournamentCompleted events = %d, want 1", finished)
	}
}

func TestFinalizeBeforeCompletion(t *testing.T) {
	b, err := Build(newTestTournament(models.FormatSingleElimination), testEntrants(4))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Finalize(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("got %v, want ErrNotReady", err)
	}
}

func TestUnknownFormat(t *testing.T) {
	tour := newTestTournament("ladder")
	if _, err := Build(tour, testEntrants(4)); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("got %v, want ErrUnknownFormat", err)
	}
}
