package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/courtline/bracket-engine/models"
)

// NodeRepository persists bracket node snapshots. Node graphs are written
// whole: the engine's in-memory arena is authoritative while a tournament
// runs, and the stored rows exist to survive restarts and to serve reads.
// Slots are stored as JSON; their placeholder structure has no relational
// meaning.
type NodeRepository interface {
	ReplaceAll(ctx context.Context, exec SQLExecutor, tournamentID int, nodes []models.BracketNode) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.BracketNode, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresNodeRepository struct {
	db *sql.DB
}

func NewPostgresNodeRepository(db *sql.DB) NodeRepository {
	return &postgresNodeRepository{db: db}
}

func (r *postgresNodeRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresNodeRepository) ReplaceAll(ctx context.Context, exec SQLExecutor, tournamentID int, nodes []models.BracketNode) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx,
		`DELETE FROM bracket_nodes WHERE tournament_id = $1`, tournamentID); err != nil {
		return fmt.Errorf("clearing bracket nodes: %w", err)
	}

	query := `
		INSERT INTO bracket_nodes (
			tournament_id, node_index, bracket_type, round, round_name, position_in_round,
			group_name, swiss_round, slot_a, slot_b, status, score_a, score_b,
			winner_id, loser_id, winner_advances_to, loser_advances_to,
			forfeit_entrant_id, forfeit_reason, scheduled_at, venue, court
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

	for _, n := range nodes {
		slotA, err := json.Marshal(n.SlotA)
		if err != nil {
			return fmt.Errorf("encoding slot A of node %d: %w", n.ID, err)
		}
		slotB, err := json.Marshal(n.SlotB)
		if err != nil {
			return fmt.Errorf("encoding slot B of node %d: %w", n.ID, err)
		}
		if _, err := executor.ExecContext(ctx, query,
			tournamentID, n.ID, n.BracketType, n.Round, n.RoundName, n.PositionInRound,
			n.Group, n.SwissRound, slotA, slotB, n.Status, n.ScoreA, n.ScoreB,
			n.WinnerID, n.LoserID, n.WinnerAdvancesTo, n.LoserAdvancesTo,
			n.ForfeitEntrantID, n.ForfeitReason, n.ScheduledAt, n.Venue, n.Court,
		); err != nil {
			return fmt.Errorf("inserting node %d: %w", n.ID, err)
		}
	}
	return nil
}

func (r *postgresNodeRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.BracketNode, error) {
	query := `
		SELECT
			node_index, bracket_type, round, round_name, position_in_round,
			group_name, swiss_round, slot_a, slot_b, status, score_a, score_b,
			winner_id, loser_id, winner_advances_to, loser_advances_to,
			forfeit_entrant_id, forfeit_reason, scheduled_at, venue, court
		FROM bracket_nodes
		WHERE tournament_id = $1
		ORDER BY node_index ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nodes := make([]models.BracketNode, 0)
	for rows.Next() {
		var n models.BracketNode
		var slotA, slotB []byte
		n.TournamentID = tournamentID
		if err := rows.Scan(
			&n.ID, &n.BracketType, &n.Round, &n.RoundName, &n.PositionInRound,
			&n.Group, &n.SwissRound, &slotA, &slotB, &n.Status, &n.ScoreA, &n.ScoreB,
			&n.WinnerID, &n.LoserID, &n.WinnerAdvancesTo, &n.LoserAdvancesTo,
			&n.ForfeitEntrantID, &n.ForfeitReason, &n.ScheduledAt, &n.Venue, &n.Court,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(slotA, &n.SlotA); err != nil {
			return nil, fmt.Errorf("decoding slot A of node %d: %w", n.ID, err)
		}
		if err := json.Unmarshal(slotB, &n.SlotB); err != nil {
			return nil, fmt.Errorf("decoding slot B of node %d: %w", n.ID, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (r *postgresNodeRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM bracket_nodes WHERE tournament_id = $1`, tournamentID)
	return err
}
