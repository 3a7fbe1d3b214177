package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/courtline/bracket-engine/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this organizer")
)

type ListTournamentsFilter struct {
	OrganizerID *int
	Status      *models.TournamentStatus
	Format      *models.TournamentFormat
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, format, status, min_teams, max_teams, group_count,
	start_date, created_at, organizer_id,
	third_place_match, allow_draws, grand_final_reset,
	qualifiers_per_group, swiss_rounds,
	points_win, points_draw, points_loss`

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			name, format, status, min_teams, max_teams, group_count,
			start_date, organizer_id,
			third_place_match, allow_draws, grand_final_reset,
			qualifiers_per_group, swiss_rounds,
			points_win, points_draw, points_loss
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Format, t.Status, t.MinTeams, t.MaxTeams, t.GroupCount,
		t.StartDate, t.OrganizerID,
		t.ThirdPlaceMatch, t.AllowDraws, t.GrandFinalReset,
		t.QualifiersPerGroup, t.SwissRounds,
		t.PointsWin, t.PointsDraw, t.PointsLoss,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Format, &t.Status, &t.MinTeams, &t.MaxTeams, &t.GroupCount,
		&t.StartDate, &t.CreatedAt, &t.OrganizerID,
		&t.ThirdPlaceMatch, &t.AllowDraws, &t.GrandFinalReset,
		&t.QualifiersPerGroup, &t.SwissRounds,
		&t.PointsWin, &t.PointsDraw, &t.PointsLoss,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE ($1::int IS NULL OR organizer_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR format = $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, query,
		filter.OrganizerID, filter.Status, filter.Format, limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Format, &t.Status, &t.MinTeams, &t.MaxTeams, &t.GroupCount,
			&t.StartDate, &t.CreatedAt, &t.OrganizerID,
			&t.ThirdPlaceMatch, &t.AllowDraws, &t.GrandFinalReset,
			&t.QualifiersPerGroup, &t.SwissRounds,
			&t.PointsWin, &t.PointsDraw, &t.PointsLoss,
		); err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1, format = $2, min_teams = $3, max_teams = $4, group_count = $5,
			start_date = $6,
			third_place_match = $7, allow_draws = $8, grand_final_reset = $9,
			qualifiers_per_group = $10, swiss_rounds = $11,
			points_win = $12, points_draw = $13, points_loss = $14
		WHERE id = $15`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.Format, t.MinTeams, t.MaxTeams, t.GroupCount,
		t.StartDate,
		t.ThirdPlaceMatch, t.AllowDraws, t.GrandFinalReset,
		t.QualifiersPerGroup, t.SwissRounds,
		t.PointsWin, t.PointsDraw, t.PointsLoss,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE tournaments SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrTournamentNameConflict
	}
	return err
}
