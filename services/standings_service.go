package services

import (
	"context"

	"github.com/courtline/bracket-engine/models"
	"github.com/courtline/bracket-engine/repositories"
)

// StandingsService serves the computed tables of table-bearing formats and
// mirrors them into Postgres so finished tournaments stay queryable after
// their bracket leaves memory.
type StandingsService interface {
	Standings(ctx context.Context, tournamentID int, group *string) ([]models.StandingsRow, error)
	AllStandings(ctx context.Context, tournamentID int) ([]models.StandingsRow, error)
	Snapshot(ctx context.Context, tournamentID int) error
}

type standingsService struct {
	brackets     BracketService
	standingRepo repositories.StandingRepository
}

func NewStandingsService(brackets BracketService, standingRepo repositories.StandingRepository) StandingsService {
	return &standingsService{brackets: brackets, standingRepo: standingRepo}
}

func hasStandings(format models.TournamentFormat) bool {
	switch format {
	case models.FormatRoundRobin, models.FormatSwiss, models.FormatGroupKnockout:
		return true
	}
	return false
}

// tableGroups lists the standings tables a tournament carries: one per
// group for group stages, a single ungrouped table otherwise.
func tableGroups(t *models.Tournament, entrants []models.Entrant) []*string {
	if t.Format != models.FormatGroupKnockout {
		return []*string{nil}
	}
	seen := make(map[string]bool)
	groups := make([]*string, 0)
	for i := range entrants {
		if entrants[i].Group == nil || seen[*entrants[i].Group] {
			continue
		}
		seen[*entrants[i].Group] = true
		g := *entrants[i].Group
		groups = append(groups, &g)
	}
	return groups
}

func (s *standingsService) Standings(ctx context.Context, tournamentID int, group *string) ([]models.StandingsRow, error) {
	b, err := s.brackets.Bracket(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !hasStandings(b.Tournament().Format) {
		return nil, ErrStandingsNotApplicable
	}
	return b.Standings(group), nil
}

func (s *standingsService) AllStandings(ctx context.Context, tournamentID int) ([]models.StandingsRow, error) {
	b, err := s.brackets.Bracket(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !hasStandings(b.Tournament().Format) {
		return nil, ErrStandingsNotApplicable
	}

	rows := make([]models.StandingsRow, 0)
	for _, group := range tableGroups(b.Tournament(), b.Entrants()) {
		rows = append(rows, b.Standings(group)...)
	}
	return rows, nil
}

// Snapshot recomputes every table of the tournament and replaces the
// stored rows. A no-op for formats without standings.
func (s *standingsService) Snapshot(ctx context.Context, tournamentID int) error {
	b, err := s.brackets.Bracket(ctx, tournamentID)
	if err != nil {
		return err
	}
	if !hasStandings(b.Tournament().Format) {
		return nil
	}
	for _, group := range tableGroups(b.Tournament(), b.Entrants()) {
		rows := b.Standings(group)
		if err := s.standingRepo.ReplaceForGroup(ctx, nil, tournamentID, group, rows); err != nil {
			return err
		}
	}
	return nil
}
