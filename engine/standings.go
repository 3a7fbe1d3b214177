package engine

import (
	"sort"

	"github.com/courtline/bracket-engine/models"
)

// Standings rebuilds the table for one group, or the whole tournament when
// group is nil, from the terminal node set. The result is deterministic:
// same nodes in, same ordered rows out.
//
// Rows are ordered by tournament points, then head-to-head points among the
// tied entrants, then point differential, then points scored, then seed.
func (b *Bracket) Standings(group *string) []models.StandingsRow {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.computeStandings(group)
}

func (b *Bracket) computeStandings(group *string) []models.StandingsRow {
	members := b.groupMembers(group)
	rows := make(map[int]*models.StandingsRow, len(members))
	for _, e := range members {
		rows[e.ID] = &models.StandingsRow{
			TournamentID: b.tournament.ID,
			EntrantID:    e.ID,
			Group:        group,
		}
	}

	for _, n := range b.nodes {
		if !nodeInGroup(n, group) {
			continue
		}
		b.tally(rows, n)
	}

	ordered := make([]*models.StandingsRow, 0, len(rows))
	for _, e := range members {
		ordered = append(ordered, rows[e.ID])
	}
	b.sortRows(ordered, group)

	out := make([]models.StandingsRow, len(ordered))
	for i, r := range ordered {
		r.Rank = i + 1
		out[i] = *r
	}
	return out
}

func (b *Bracket) groupMembers(group *string) []*models.Entrant {
	if group == nil {
		return b.seeded
	}
	members := make([]*models.Entrant, 0)
	for _, e := range b.seeded {
		if e.Group != nil && *e.Group == *group {
			members = append(members, e)
		}
	}
	return members
}

func nodeInGroup(n *models.BracketNode, group *string) bool {
	if group == nil {
		return true
	}
	return n.Group != nil && *n.Group == *group
}

// tally folds one node into the rows. Only completed and forfeit nodes
// count as played games; structural byes outside Swiss leave the table
// untouched, while a Swiss bye counts as a scoreless win.
func (b *Bracket) tally(rows map[int]*models.StandingsRow, n *models.BracketNode) {
	win, draw, loss := b.tournament.PointSchedule()

	switch n.Status {
	case models.NodeBye:
		if b.tournament.Format != models.FormatSwiss || n.WinnerID == nil {
			return
		}
		if r := rows[*n.WinnerID]; r != nil {
			r.GamesPlayed++
			r.Wins++
			r.Points += win
		}
	case models.NodeForfeit:
		if r := rows[*n.WinnerID]; r != nil {
			r.GamesPlayed++
			r.Wins++
			r.Points += win
		}
		if r := rows[*n.LoserID]; r != nil {
			r.GamesPlayed++
			r.Losses++
			r.Points += loss
		}
	case models.NodeCompleted:
		a, bb := n.SlotA.EntrantID, n.SlotB.EntrantID
		if a == nil || bb == nil || n.ScoreA == nil || n.ScoreB == nil {
			return
		}
		ra, rb := rows[*a], rows[*bb]
		if ra != nil {
			ra.GamesPlayed++
			ra.PointsFor += *n.ScoreA
			ra.PointsAgainst += *n.ScoreB
			ra.PointDiff = ra.PointsFor - ra.PointsAgainst
		}
		if rb != nil {
			rb.GamesPlayed++
			rb.PointsFor += *n.ScoreB
			rb.PointsAgainst += *n.ScoreA
			rb.PointDiff = rb.PointsFor - rb.PointsAgainst
		}
		switch {
		case n.WinnerID == nil: // draw
			if ra != nil {
				ra.Draws++
				ra.Points += draw
			}
			if rb != nil {
				rb.Draws++
				rb.Points += draw
			}
		case ra != nil && *n.WinnerID == *a:
			ra.Wins++
			ra.Points += win
			if rb != nil {
				rb.Losses++
				rb.Points += loss
			}
		default:
			if rb != nil {
				rb.Wins++
				rb.Points += win
			}
			if ra != nil {
				ra.Losses++
				ra.Points += loss
			}
		}
	}
}

// sortRows orders rows by points, breaking ties with a head-to-head
// mini-table restricted to the tied entrants, then point differential,
// points scored, and finally seed.
func (b *Bracket) sortRows(rows []*models.StandingsRow, group *string) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Points > rows[j].Points })

	for lo := 0; lo < len(rows); {
		hi := lo + 1
		for hi < len(rows) && rows[hi].Points == rows[lo].Points {
			hi++
		}
		if hi-lo > 1 {
			b.breakTies(rows[lo:hi], group)
		}
		lo = hi
	}
}

func (b *Bracket) breakTies(tied []*models.StandingsRow, group *string) {
	inTie := make(map[int]bool, len(tied))
	for _, r := range tied {
		inTie[r.EntrantID] = true
	}

	// Head-to-head points among the tied entrants only.
	h2h := make(map[int]int, len(tied))
	win, draw, loss := b.tournament.PointSchedule()
	for _, n := range b.nodes {
		if !nodeInGroup(n, group) {
			continue
		}
		if n.Status != models.NodeCompleted && n.Status != models.NodeForfeit {
			continue
		}
		a, bb := n.SlotA.EntrantID, n.SlotB.EntrantID
		if a == nil || bb == nil || !inTie[*a] || !inTie[*bb] {
			continue
		}
		if n.WinnerID == nil {
			h2h[*a] += draw
			h2h[*bb] += draw
			continue
		}
		h2h[*n.WinnerID] += win
		h2h[*n.LoserID] += loss
	}

	sort.SliceStable(tied, func(i, j int) bool {
		a, bb := tied[i], tied[j]
		if h2h[a.EntrantID] != h2h[bb.EntrantID] {
			return h2h[a.EntrantID] > h2h[bb.EntrantID]
		}
		if a.PointDiff != bb.PointDiff {
			return a.PointDiff > bb.PointDiff
		}
		if a.PointsFor != bb.PointsFor {
			return a.PointsFor > bb.PointsFor
		}
		return b.entrants[a.EntrantID].Seed < b.entrants[bb.EntrantID].Seed
	})
}
