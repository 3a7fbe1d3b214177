package models

import "time"

// StandingsRow is one entrant's line in a group/round-robin/Swiss table.
// Rows are rebuilt deterministically from the terminal node set of their
// group; they are never hand-edited.
type StandingsRow struct {
	ID            int       `json:"id" db:"id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	EntrantID     int       `json:"entrant_id" db:"entrant_id"`
	Group         *string   `json:"group,omitempty" db:"group_name"`
	GamesPlayed   int       `json:"games_played" db:"games_played"`
	Wins          int       `json:"wins" db:"wins"`
	Draws         int       `json:"draws" db:"draws"`
	Losses        int       `json:"losses" db:"losses"`
	PointsFor     int       `json:"points_for" db:"points_for"`
	PointsAgainst int       `json:"points_against" db:"points_against"`
	PointDiff     int       `json:"point_diff" db:"point_diff"`
	Points        int       `json:"points" db:"points"`
	Rank          int       `json:"rank" db:"rank"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Placement is one line of a tournament's final ranking.
type Placement struct {
	Position  int `json:"position"`
	EntrantID int `json:"entrant_id"`
}
