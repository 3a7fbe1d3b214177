package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtline/bracket-engine/engine"
	"github.com/courtline/bracket-engine/models"
	"github.com/courtline/bracket-engine/repositories"
	"github.com/courtline/bracket-engine/storage"
)

// ScheduleMatchInput carries the officiating details for a pending node.
type ScheduleMatchInput struct {
	Venue       string    `json:"venue"`
	Court       string    `json:"court"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// ReportResultInput is the reported outcome of a node. When ForfeitBy is
// set the scores are ignored.
type ReportResultInput struct {
	ScoreA    *int   `json:"score_a"`
	ScoreB    *int   `json:"score_b"`
	ForfeitBy *int   `json:"forfeit_by"`
	Reason    string `json:"reason"`
}

// ResultService drives a bracket through its life: scheduling, starting,
// resolving and correcting nodes. Every mutation goes through the engine
// first, then the write-through snapshot; the engine rejecting a transition
// leaves the stored state untouched.
type ResultService interface {
	Schedule(ctx context.Context, requesterID, tournamentID, nodeID int, in ScheduleMatchInput) (*models.BracketNode, error)
	Start(ctx context.Context, requesterID, tournamentID, nodeID int) (*models.BracketNode, error)
	Report(ctx context.Context, requesterID, tournamentID, nodeID int, in ReportResultInput) (*models.BracketNode, error)
	Reopen(ctx context.Context, requesterID, tournamentID, nodeID int) (*models.BracketNode, error)
	AdvanceSwissRound(ctx context.Context, requesterID, tournamentID int) ([]models.BracketNode, error)
}

type resultService struct {
	tournamentRepo repositories.TournamentRepository
	entrantRepo    repositories.EntrantRepository
	brackets       BracketService
	standings      StandingsService
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewResultService(
	tournamentRepo repositories.TournamentRepository,
	entrantRepo repositories.EntrantRepository,
	brackets BracketService,
	standings StandingsService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		tournamentRepo: tournamentRepo,
		entrantRepo:    entrantRepo,
		brackets:       brackets,
		standings:      standings,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *resultService) Schedule(ctx context.Context, requesterID, tournamentID, nodeID int, in ScheduleMatchInput) (*models.BracketNode, error) {
	if in.Venue == "" || in.ScheduledAt.IsZero() {
		return nil, ErrScheduleDetailsRequired
	}
	b, err := s.authorize(ctx, requesterID, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := b.Schedule(nodeID, in.Venue, in.Court, in.ScheduledAt); err != nil {
		return nil, err
	}
	return s.finishMutation(ctx, b, tournamentID, nodeID)
}

func (s *resultService) Start(ctx context.Context, requesterID, tournamentID, nodeID int) (*models.BracketNode, error) {
	b, err := s.authorize(ctx, requesterID, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := b.Start(nodeID, time.Now()); err != nil {
		return nil, err
	}
	return s.finishMutation(ctx, b, tournamentID, nodeID)
}

func (s *resultService) Report(ctx context.Context, requesterID, tournamentID, nodeID int, in ReportResultInput) (*models.BracketNode, error) {
	b, err := s.authorize(ctx, requesterID, tournamentID)
	if err != nil {
		return nil, err
	}

	res := engine.Result{NodeID: nodeID, ForfeitBy: in.ForfeitBy, Reason: in.Reason}
	if in.ForfeitBy == nil {
		if in.ScoreA == nil || in.ScoreB == nil {
			return nil, ErrResultScoresRequired
		}
		res.ScoreA = *in.ScoreA
		res.ScoreB = *in.ScoreB
	}
	if err := b.ReportResult(res); err != nil {
		return nil, err
	}

	node, err := s.finishMutation(ctx, b, tournamentID, nodeID)
	if err != nil {
		return nil, err
	}
	if b.Completed() {
		if err := s.completeTournament(ctx, b, tournamentID); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (s *resultService) Reopen(ctx context.Context, requesterID, tournamentID, nodeID int) (*models.BracketNode, error) {
	b, err := s.authorize(ctx, requesterID, tournamentID)
	if err != nil {
		return nil, err
	}

	wasCompleted := b.Completed()
	if err := b.Reopen(nodeID); err != nil {
		return nil, err
	}
	if wasCompleted {
		// The correction un-finished the tournament; the stored status
		// follows the graph back to in_progress.
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, models.StatusInProgress); err != nil {
			return nil, err
		}
	}
	return s.finishMutation(ctx, b, tournamentID, nodeID)
}

func (s *resultService) AdvanceSwissRound(ctx context.Context, requesterID, tournamentID int) ([]models.BracketNode, error) {
	b, err := s.authorize(ctx, requesterID, tournamentID)
	if err != nil {
		return nil, err
	}
	if b.Tournament().Format != models.FormatSwiss {
		return nil, ErrSwissRoundManualAdvance
	}
	nodes, err := b.AdvanceSwissRound()
	if err != nil {
		return nil, err
	}
	if err := s.persistState(ctx, b, tournamentID); err != nil {
		return nil, err
	}
	return nodes, nil
}

// authorize resolves the bracket and checks the requester owns the
// tournament it belongs to.
func (s *resultService) authorize(ctx context.Context, requesterID, tournamentID int) (*engine.Bracket, error) {
	b, err := s.brackets.Bracket(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if b.Tournament().OrganizerID != requesterID {
		return nil, ErrForbiddenOperation
	}
	return b, nil
}

func (s *resultService) finishMutation(ctx context.Context, b *engine.Bracket, tournamentID, nodeID int) (*models.BracketNode, error) {
	if err := s.persistState(ctx, b, tournamentID); err != nil {
		return nil, err
	}
	node, err := b.Node(nodeID)
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// persistState writes the node snapshot, the entrant records, and the
// standings tables after a successful engine mutation.
func (s *resultService) persistState(ctx context.Context, b *engine.Bracket, tournamentID int) error {
	if err := s.brackets.Persist(ctx, tournamentID); err != nil {
		return err
	}
	entrants := b.Entrants()
	for i := range entrants {
		if err := s.entrantRepo.Update(ctx, nil, &entrants[i]); err != nil {
			return fmt.Errorf("persisting entrant %d: %w", entrants[i].ID, err)
		}
	}
	return s.standings.Snapshot(ctx, tournamentID)
}

// completeTournament runs once, when the last node resolves: the stored
// status flips to completed and the final ranking is archived as a JSON
// document when an archive bucket is configured.
func (s *resultService) completeTournament(ctx context.Context, b *engine.Bracket, tournamentID int) error {
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, models.StatusCompleted); err != nil {
		return err
	}
	ranking, err := b.Ranking()
	if err != nil {
		return err
	}
	s.logger.Info("tournament completed", "tournament_id", tournamentID, "placements", len(ranking))

	if s.uploader == nil {
		return nil
	}
	payload, err := json.Marshal(struct {
		TournamentID int                     `json:"tournament_id"`
		Name         string                  `json:"name"`
		Format       models.TournamentFormat `json:"format"`
		CompletedAt  time.Time               `json:"completed_at"`
		Ranking      []models.Placement      `json:"ranking"`
	}{
		TournamentID: tournamentID,
		Name:         b.Tournament().Name,
		Format:       b.Tournament().Format,
		CompletedAt:  time.Now().UTC(),
		Ranking:      ranking,
	})
	if err != nil {
		return fmt.Errorf("encoding final ranking: %w", err)
	}

	key := fmt.Sprintf("rankings/tournament-%d.json", tournamentID)
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		// Archiving is best-effort: the ranking lives in Postgres either way.
		s.logger.Error("final ranking archive failed", "tournament_id", tournamentID, "error", err)
		return nil
	}
	s.logger.Info("final ranking archived", "tournament_id", tournamentID, "location", result.Location)
	return nil
}
