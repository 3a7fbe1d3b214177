package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/courtline/bracket-engine/models"
)

var (
	ErrEntrantNotFound = errors.New("entrant not found")
	ErrEntrantConflict = errors.New("team is already registered for this tournament")
	ErrSeedConflict    = errors.New("seed is already taken in this tournament")
)

type EntrantRepository interface {
	Create(ctx context.Context, entrant *models.Entrant) error
	GetByID(ctx context.Context, id int) (*models.Entrant, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Entrant, error)
	Update(ctx context.Context, exec SQLExecutor, entrant *models.Entrant) error
	UpdateSeeds(ctx context.Context, exec SQLExecutor, tournamentID int, seedsByEntrant map[int]int) error
	Delete(ctx context.Context, id int) error
}

type postgresEntrantRepository struct {
	db *sql.DB
}

func NewPostgresEntrantRepository(db *sql.DB) EntrantRepository {
	return &postgresEntrantRepository{db: db}
}

func (r *postgresEntrantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const entrantColumns = `
	id, tournament_id, team_id, display_name, seed, group_name, status,
	games_played, wins, losses, draws, points_for, points_against, tournament_points,
	final_position, elimination_round, eliminated_at, registered_at`

func (r *postgresEntrantRepository) Create(ctx context.Context, e *models.Entrant) error {
	query := `
		INSERT INTO entrants (tournament_id, team_id, display_name, seed, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, registered_at`

	err := r.db.QueryRowContext(ctx, query,
		e.TournamentID, e.TeamID, e.DisplayName, e.Seed, e.Status,
	).Scan(&e.ID, &e.RegisteredAt)

	return handleEntrantError(err)
}

func (r *postgresEntrantRepository) GetByID(ctx context.Context, id int) (*models.Entrant, error) {
	query := `SELECT` + entrantColumns + ` FROM entrants WHERE id = $1`
	e := &models.Entrant{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.TournamentID, &e.TeamID, &e.DisplayName, &e.Seed, &e.Group, &e.Status,
		&e.Record.GamesPlayed, &e.Record.Wins, &e.Record.Losses, &e.Record.Draws,
		&e.Record.PointsFor, &e.Record.PointsAgainst, &e.Record.TournamentPoints,
		&e.FinalPosition, &e.EliminationRound, &e.EliminatedAt, &e.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntrantNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresEntrantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Entrant, error) {
	query := `SELECT` + entrantColumns + `
		FROM entrants WHERE tournament_id = $1 ORDER BY seed ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entrants := make([]models.Entrant, 0)
	for rows.Next() {
		var e models.Entrant
		if err := rows.Scan(
			&e.ID, &e.TournamentID, &e.TeamID, &e.DisplayName, &e.Seed, &e.Group, &e.Status,
			&e.Record.GamesPlayed, &e.Record.Wins, &e.Record.Losses, &e.Record.Draws,
			&e.Record.PointsFor, &e.Record.PointsAgainst, &e.Record.TournamentPoints,
			&e.FinalPosition, &e.EliminationRound, &e.EliminatedAt, &e.RegisteredAt,
		); err != nil {
			return nil, err
		}
		entrants = append(entrants, e)
	}
	return entrants, rows.Err()
}

func (r *postgresEntrantRepository) Update(ctx context.Context, exec SQLExecutor, e *models.Entrant) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE entrants SET
			display_name = $1, seed = $2, group_name = $3, status = $4,
			games_played = $5, wins = $6, losses = $7, draws = $8,
			points_for = $9, points_against = $10, tournament_points = $11,
			final_position = $12, elimination_round = $13, eliminated_at = $14
		WHERE id = $15`

	result, err := executor.ExecContext(ctx, query,
		e.DisplayName, e.Seed, e.Group, e.Status,
		e.Record.GamesPlayed, e.Record.Wins, e.Record.Losses, e.Record.Draws,
		e.Record.PointsFor, e.Record.PointsAgainst, e.Record.TournamentPoints,
		e.FinalPosition, e.EliminationRound, e.EliminatedAt,
		e.ID,
	)
	if err != nil {
		return handleEntrantError(err)
	}
	return checkAffectedRows(result, ErrEntrantNotFound)
}

// UpdateSeeds rewrites the seed assignment of a whole tournament in one
// statement batch. Seeds go through a negative staging pass first so the
// unique (tournament_id, seed) index never sees an intermediate collision.
func (r *postgresEntrantRepository) UpdateSeeds(ctx context.Context, exec SQLExecutor, tournamentID int, seedsByEntrant map[int]int) error {
	executor := r.getExecutor(exec)

	for entrantID, seed := range seedsByEntrant {
		result, err := executor.ExecContext(ctx,
			`UPDATE entrants SET seed = $1 WHERE id = $2 AND tournament_id = $3`,
			-seed, entrantID, tournamentID)
		if err != nil {
			return handleEntrantError(err)
		}
		if err := checkAffectedRows(result, ErrEntrantNotFound); err != nil {
			return err
		}
	}
	_, err := executor.ExecContext(ctx,
		`UPDATE entrants SET seed = -seed WHERE tournament_id = $1 AND seed < 0`, tournamentID)
	return handleEntrantError(err)
}

func (r *postgresEntrantRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM entrants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEntrantNotFound)
}

func handleEntrantError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if pqErr.Constraint == "entrants_tournament_seed_key" {
			return ErrSeedConflict
		}
		return ErrEntrantConflict
	}
	return err
}
