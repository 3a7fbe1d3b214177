package engine

import (
	"errors"
	"testing"

	"github.com/courtline/bracket-engine/models"
)

func TestSeedOrder(t *testing.T) {
	cases := map[int][]int{
		2:  {1, 2},
		4:  {1, 4, 2, 3},
		8:  {1, 8, 4, 5, 2, 7, 3, 6},
		16: {1, 16, 8, 9, 4, 13, 5, 12, 2, 15, 7, 10, 3, 14, 6, 11},
	}
	for size, want := range cases {
		got := seedOrder(size)
		if len(got) != len(want) {
			t.Fatalf("size %d: length %d, want %d", size, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("size %d: order %v, want %v", size, got, want)
			}
		}
	}
}

func TestSeedOrderKeepsTopSeedsApart(t *testing.T) {
	// Seeds 1 and 2 must land in opposite halves at every size.
	for _, size := range []int{4, 8, 16, 32, 64} {
		order := seedOrder(size)
		var pos1, pos2 int
		for i, s := range order {
			if s == 1 {
				pos1 = i
			}
			if s == 2 {
				pos2 = i
			}
		}
		if (pos1 < size/2) == (pos2 < size/2) {
			t.Fatalf("size %d: seeds 1 and 2 share a half", size)
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 4, 5: 8, 8: 8, 9: 16, 17: 32}
	for n, want := range cases {
		if got := nextPowerOfTwo(n); got != want {
			t.Fatalf("nextPowerOfTwo(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestSnakeGroups(t *testing.T) {
	groups := snakeGroups(testEntrants(10), 3)
	// Boustrophedon: 1,2,3 then 3,2,1 then 1,2,3 ...
	want := [][]int{{1, 6, 7}, {2, 5, 8}, {3, 4, 9, 10}}
	for g, members := range groups {
		if len(members) != len(want[g]) {
			t.Fatalf("group %d has %d members, want %d", g, len(members), len(want[g]))
		}
		for i, e := range members {
			if e.Seed != want[g][i] {
				t.Fatalf("group %d seeds %v, want %v", g, members, want[g])
			}
		}
	}
}

func TestPairSwissBacktracks(t *testing.T) {
	entrants := testEntrants(4)
	a, b, c, d := entrants[0], entrants[1], entrants[2], entrants[3]

	// Greedy would pair a-b, but they already met; a valid pairing still
	// exists (a-c, b-d) and must be found.
	played := func(x, y int) bool {
		return (x == a.ID && y == b.ID) || (x == b.ID && y == a.ID)
	}
	pairs, err := pairSwiss([]*models.Entrant{a, b, c, d}, played)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs = %d, want 2", len(pairs))
	}
	if pairs[0][0] != a || pairs[0][1] != c || pairs[1][0] != b || pairs[1][1] != d {
		t.Fatalf("pairing %v-%v, %v-%v; want a-c, b-d",
			pairs[0][0].Seed, pairs[0][1].Seed, pairs[1][0].Seed, pairs[1][1].Seed)
	}
}

func TestPairSwissUnresolvable(t *testing.T) {
	entrants := testEntrants(2)
	played := func(x, y int) bool { return true }
	if _, err := pairSwiss(entrants, played); !errors.Is(err, ErrUnresolvablePairing) {
		t.Fatalf("got %v, want ErrUnresolvablePairing", err)
	}
}

func TestRoundRobinCircleCoversAllPairs(t *testing.T) {
	const length = 8
	seen := make(map[[2]int]bool)
	for r := 0; r < length-1; r++ {
		for i := 0; i < length/2; i++ {
			a := roundRobinCircleIndex(i, length, r)
			b := roundRobinCircleIndex(length-1-i, length, r)
			if a > b {
				a, b = b, a
			}
			if seen[[2]int{a, b}] {
				t.Fatalf("pair (%d,%d) produced twice", a, b)
			}
			seen[[2]int{a, b}] = true
		}
	}
	if len(seen) != length*(length-1)/2 {
		t.Fatalf("pairs = %d, want %d", len(seen), length*(length-1)/2)
	}
}
