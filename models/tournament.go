package models

import "time"

// TournamentStatus mirrors the tournament lifecycle ENUM in the database.
type TournamentStatus string

const (
	StatusDraft              TournamentStatus = "draft"
	StatusRegistrationOpen   TournamentStatus = "registration_open"
	StatusRegistrationClosed TournamentStatus = "registration_closed"
	StatusInProgress         TournamentStatus = "in_progress"
	StatusCompleted          TournamentStatus = "completed"
	StatusCancelled          TournamentStatus = "cancelled"
)

// TournamentFormat selects the bracket-building strategy.
type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elimination"
	FormatDoubleElimination TournamentFormat = "double_elimination"
	FormatRoundRobin        TournamentFormat = "round_robin"
	FormatSwiss             TournamentFormat = "swiss"
	FormatGroupKnockout     TournamentFormat = "group_then_knockout"
)

// Tournament is a single competition instance. The format is immutable once
// bracket generation has happened; the service layer enforces that.
type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Format      TournamentFormat `json:"format" db:"format"`
	Status      TournamentStatus `json:"status" db:"status"`
	MinTeams    int              `json:"min_teams" db:"min_teams"`
	MaxTeams    int              `json:"max_teams" db:"max_teams"`
	GroupCount  int              `json:"group_count" db:"group_count"`
	StartDate   time.Time        `json:"start_date" db:"start_date"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	OrganizerID int              `json:"organizer_id" db:"organizer_id"`

	// Format options, stored alongside the tournament row.
	ThirdPlaceMatch    bool `json:"third_place_match" db:"third_place_match"`
	AllowDraws         bool `json:"allow_draws" db:"allow_draws"`
	GrandFinalReset    bool `json:"grand_final_reset" db:"grand_final_reset"`
	QualifiersPerGroup int  `json:"qualifiers_per_group" db:"qualifiers_per_group"`
	SwissRounds        int  `json:"swiss_rounds" db:"swiss_rounds"`
	PointsWin          int  `json:"points_win" db:"points_win"`
	PointsDraw         int  `json:"points_draw" db:"points_draw"`
	PointsLoss         int  `json:"points_loss" db:"points_loss"`

	// Optional related entities, populated by the service layer.
	Entrants []Entrant     `json:"entrants,omitempty" db:"-"`
	Nodes    []BracketNode `json:"nodes,omitempty" db:"-"`
}

// PointSchedule returns the per-result tournament points, falling back to
// the conventional win=2/draw=1/loss=0 when the row carries zeroes.
func (t *Tournament) PointSchedule() (win, draw, loss int) {
	if t.PointsWin == 0 && t.PointsDraw == 0 && t.PointsLoss == 0 {
		return 2, 1, 0
	}
	return t.PointsWin, t.PointsDraw, t.PointsLoss
}
