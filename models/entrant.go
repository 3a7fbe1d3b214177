package models

import "time"

// EntrantStatus mirrors the registration ENUM in the database.
type EntrantStatus string

const (
	EntrantRegistered   EntrantStatus = "registered"
	EntrantApproved     EntrantStatus = "approved"
	EntrantWithdrawn    EntrantStatus = "withdrawn"
	EntrantDisqualified EntrantStatus = "disqualified"
)

// Entrant is a participating unit. TeamID references the external team
// registry; everything competition-related about the team lives here.
// Seeds are contiguous 1..N at generation time, 1 = strongest.
type Entrant struct {
	ID           int           `json:"id" db:"id"`
	TournamentID int           `json:"tournament_id" db:"tournament_id"`
	TeamID       int           `json:"team_id" db:"team_id"`
	DisplayName  string        `json:"display_name" db:"display_name"`
	Seed         int           `json:"seed" db:"seed"`
	Group        *string       `json:"group,omitempty" db:"group_name"`
	Status       EntrantStatus `json:"status" db:"status"`

	Record Record `json:"record"`

	FinalPosition    *int       `json:"final_position,omitempty" db:"final_position"`
	EliminationRound *string    `json:"elimination_round,omitempty" db:"elimination_round"`
	EliminatedAt     *time.Time `json:"eliminated_at,omitempty" db:"eliminated_at"`
	RegisteredAt     time.Time  `json:"registered_at" db:"registered_at"`
}

// Record accumulates an entrant's results. Fields only ever grow except
// through the explicit reopen path, which reverses a single result.
type Record struct {
	GamesPlayed      int `json:"games_played" db:"games_played"`
	Wins             int `json:"wins" db:"wins"`
	Losses           int `json:"losses" db:"losses"`
	Draws            int `json:"draws" db:"draws"`
	PointsFor        int `json:"points_for" db:"points_for"`
	PointsAgainst    int `json:"points_against" db:"points_against"`
	TournamentPoints int `json:"tournament_points" db:"tournament_points"`
}

// PointDifferential is derived, never stored.
func (r Record) PointDifferential() int {
	return r.PointsFor - r.PointsAgainst
}

func (r *Record) AddWin(pointsFor, pointsAgainst, tournamentPoints int) {
	r.GamesPlayed++
	r.Wins++
	r.PointsFor += pointsFor
	r.PointsAgainst += pointsAgainst
	r.TournamentPoints += tournamentPoints
}

func (r *Record) AddLoss(pointsFor, pointsAgainst, tournamentPoints int) {
	r.GamesPlayed++
	r.Losses++
	r.PointsFor += pointsFor
	r.PointsAgainst += pointsAgainst
	r.TournamentPoints += tournamentPoints
}

func (r *Record) AddDraw(pointsFor, pointsAgainst, tournamentPoints int) {
	r.GamesPlayed++
	r.Draws++
	r.PointsFor += pointsFor
	r.PointsAgainst += pointsAgainst
	r.TournamentPoints += tournamentPoints
}

func (r *Record) RemoveWin(pointsFor, pointsAgainst, tournamentPoints int) {
	r.GamesPlayed--
	r.Wins--
	r.PointsFor -= pointsFor
	r.PointsAgainst -= pointsAgainst
	r.TournamentPoints -= tournamentPoints
}

func (r *Record) RemoveLoss(pointsFor, pointsAgainst, tournamentPoints int) {
	r.GamesPlayed--
	r.Losses--
	r.PointsFor -= pointsFor
	r.PointsAgainst -= pointsAgainst
	r.TournamentPoints -= tournamentPoints
}

func (r *Record) RemoveDraw(pointsFor, pointsAgainst, tournamentPoints int) {
	r.GamesPlayed--
	r.Draws--
	r.PointsFor -= pointsFor
	r.PointsAgainst -= pointsAgainst
	r.TournamentPoints -= tournamentPoints
}
