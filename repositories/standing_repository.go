package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courtline/bracket-engine/models"
)

// StandingRepository stores computed standings tables. Rows are replaced
// wholesale per group whenever the engine recomputes the table.
type StandingRepository interface {
	ReplaceForGroup(ctx context.Context, exec SQLExecutor, tournamentID int, group *string, rows []models.StandingsRow) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.StandingsRow, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) ReplaceForGroup(ctx context.Context, exec SQLExecutor, tournamentID int, group *string, rows []models.StandingsRow) error {
	executor := r.getExecutor(exec)

	var err error
	if group == nil {
		_, err = executor.ExecContext(ctx,
			`DELETE FROM standings WHERE tournament_id = $1 AND group_name IS NULL`, tournamentID)
	} else {
		_, err = executor.ExecContext(ctx,
			`DELETE FROM standings WHERE tournament_id = $1 AND group_name = $2`, tournamentID, *group)
	}
	if err != nil {
		return fmt.Errorf("clearing standings: %w", err)
	}

	query := `
		INSERT INTO standings (
			tournament_id, entrant_id, group_name, games_played, wins, draws, losses,
			points_for, points_against, point_diff, points, rank, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())`

	for _, row := range rows {
		if _, err := executor.ExecContext(ctx, query,
			tournamentID, row.EntrantID, group, row.GamesPlayed, row.Wins, row.Draws, row.Losses,
			row.PointsFor, row.PointsAgainst, row.PointDiff, row.Points, row.Rank,
		); err != nil {
			return fmt.Errorf("inserting standings row for entrant %d: %w", row.EntrantID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.StandingsRow, error) {
	query := `
		SELECT id, tournament_id, entrant_id, group_name, games_played, wins, draws, losses,
		       points_for, points_against, point_diff, points, rank, updated_at
		FROM standings
		WHERE tournament_id = $1
		ORDER BY group_name NULLS FIRST, rank ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.StandingsRow, 0)
	for rows.Next() {
		var s models.StandingsRow
		if err := rows.Scan(
			&s.ID, &s.TournamentID, &s.EntrantID, &s.Group, &s.GamesPlayed, &s.Wins, &s.Draws, &s.Losses,
			&s.PointsFor, &s.PointsAgainst, &s.PointDiff, &s.Points, &s.Rank, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *postgresStandingRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM standings WHERE tournament_id = $1`, tournamentID)
	return err
}
