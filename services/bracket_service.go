package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/courtline/bracket-engine/engine"
	"github.com/courtline/bracket-engine/models"
	"github.com/courtline/bracket-engine/repositories"
	"golang.org/x/sync/errgroup"
)

// BracketService owns the live brackets. The engine's in-memory graph is
// the source of truth for a running tournament; the node rows in Postgres
// are a write-through snapshot that lets a restarted process rebuild the
// graph by replaying results.
type BracketService interface {
	Generate(ctx context.Context, requesterID, tournamentID int) ([]models.BracketNode, error)
	Bracket(ctx context.Context, tournamentID int) (*engine.Bracket, error)
	Nodes(ctx context.Context, tournamentID int) ([]models.BracketNode, error)
	Ranking(ctx context.Context, tournamentID int) ([]models.Placement, error)
	CancelTournament(ctx context.Context, requesterID, tournamentID int) error
	Persist(ctx context.Context, tournamentID int) error
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	entrantRepo    repositories.EntrantRepository
	nodeRepo       repositories.NodeRepository
	emitter        engine.Emitter
	logger         *slog.Logger

	mu       sync.Mutex
	brackets map[int]*engine.Bracket
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	entrantRepo repositories.EntrantRepository,
	nodeRepo repositories.NodeRepository,
	emitter engine.Emitter,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		entrantRepo:    entrantRepo,
		nodeRepo:       nodeRepo,
		emitter:        emitter,
		logger:         logger,
		brackets:       make(map[int]*engine.Bracket),
	}
}

// Generate builds the bracket for a tournament whose registration is
// closed, persists the node snapshot, and moves the tournament to
// in_progress. Regenerating is allowed only while no result has been
// reported.
func (s *bracketService) Generate(ctx context.Context, requesterID, tournamentID int) ([]models.BracketNode, error) {
	tournament, entrants, err := s.loadField(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.OrganizerID != requesterID {
		return nil, ErrForbiddenOperation
	}
	switch tournament.Status {
	case models.StatusRegistrationClosed:
	case models.StatusInProgress:
		// Regeneration: permitted only while the existing bracket has no
		// reported result.
		existing, err := s.Bracket(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		if existing.Started() {
			return nil, engine.ErrBracketAlreadyStarted
		}
	default:
		return nil, ErrTournamentWrongStatus
	}

	bracket, err := engine.Build(tournament, entrants)
	if err != nil {
		return nil, err
	}
	bracket.SetEmitter(s.emitter)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning bracket generation transaction: %w", err)
	}
	defer tx.Rollback()

	nodes := bracket.Nodes()
	if err := s.nodeRepo.ReplaceAll(ctx, tx, tournamentID, nodes); err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusInProgress); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing bracket generation: %w", err)
	}

	s.mu.Lock()
	s.brackets[tournamentID] = bracket
	s.mu.Unlock()

	s.logger.Info("bracket generated",
		"tournament_id", tournamentID,
		"format", tournament.Format,
		"entrants", len(entrants),
		"nodes", len(nodes))
	return nodes, nil
}

// Bracket returns the live bracket for a tournament, rebuilding it from the
// persisted snapshot when the process has no copy in memory.
func (s *bracketService) Bracket(ctx context.Context, tournamentID int) (*engine.Bracket, error) {
	s.mu.Lock()
	if b, ok := s.brackets[tournamentID]; ok {
		s.mu.Unlock()
		return b, nil
	}
	s.mu.Unlock()

	b, err := s.hydrate(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A concurrent hydration may have won the race; keep the first one.
	if existing, ok := s.brackets[tournamentID]; ok {
		return existing, nil
	}
	s.brackets[tournamentID] = b
	return b, nil
}

func (s *bracketService) Nodes(ctx context.Context, tournamentID int) ([]models.BracketNode, error) {
	b, err := s.Bracket(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return b.Nodes(), nil
}

func (s *bracketService) Ranking(ctx context.Context, tournamentID int) ([]models.Placement, error) {
	b, err := s.Bracket(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return b.Ranking()
}

// CancelTournament aborts a tournament: the stored status flips to
// cancelled and the live bracket, if any, stops accepting transitions.
func (s *bracketService) CancelTournament(ctx context.Context, requesterID, tournamentID int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	if tournament.OrganizerID != requesterID {
		return ErrForbiddenOperation
	}
	if !transitionAllowed(tournament.Status, models.StatusCancelled) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, tournament.Status, models.StatusCancelled)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, tournamentID, models.StatusCancelled); err != nil {
		return err
	}

	s.mu.Lock()
	b, ok := s.brackets[tournamentID]
	s.mu.Unlock()
	if ok {
		b.Cancel()
	}
	s.logger.Info("tournament cancelled", "tournament_id", tournamentID)
	return nil
}

// Persist snapshots the live bracket's nodes. Called after every mutation
// so a crash never loses more than the in-flight operation.
func (s *bracketService) Persist(ctx context.Context, tournamentID int) error {
	s.mu.Lock()
	b, ok := s.brackets[tournamentID]
	s.mu.Unlock()
	if !ok {
		return ErrBracketNotGenerated
	}
	return s.nodeRepo.ReplaceAll(ctx, nil, tournamentID, b.Nodes())
}

// loadField fetches the tournament and its approved, seeded entrants in
// parallel. Entrant records are zeroed: records belong to the engine and
// are always derived from replayed results.
func (s *bracketService) loadField(ctx context.Context, tournamentID int) (*models.Tournament, []*models.Entrant, error) {
	var (
		tournament *models.Tournament
		entrants   []models.Entrant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gctx, tournamentID)
		if err != nil {
			return err
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		list, err := s.entrantRepo.ListByTournament(gctx, tournamentID)
		if err != nil {
			return err
		}
		entrants = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	field := make([]*models.Entrant, 0, len(entrants))
	for i := range entrants {
		if entrants[i].Status != models.EntrantApproved {
			continue
		}
		e := entrants[i]
		e.Record = models.Record{}
		e.FinalPosition = nil
		e.EliminationRound = nil
		e.EliminatedAt = nil
		field = append(field, &e)
	}
	return tournament, field, nil
}

// hydrate rebuilds a bracket from the persisted node snapshot: the graph is
// regenerated from the tournament and entrants, then every stored schedule
// and result is replayed in node order. Replay in ascending node index is
// total: a node's inputs always carry smaller indices than the node itself,
// and lazily generated rounds reappear deterministically as their
// prerequisites resolve.
func (s *bracketService) hydrate(ctx context.Context, tournamentID int) (*engine.Bracket, error) {
	stored, err := s.nodeRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, ErrBracketNotGenerated
	}

	tournament, entrants, err := s.loadField(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	bracket, err := engine.Build(tournament, entrants)
	if err != nil {
		return nil, fmt.Errorf("rebuilding bracket for tournament %d: %w", tournamentID, err)
	}

	for _, n := range stored {
		if err := replayNode(bracket, n); err != nil {
			return nil, fmt.Errorf("replaying node %d of tournament %d: %w", n.ID, tournamentID, err)
		}
	}

	// The emitter is attached after replay: hydration reconstructs old
	// state and must not re-announce it.
	bracket.SetEmitter(s.emitter)
	s.logger.Info("bracket hydrated", "tournament_id", tournamentID, "nodes", len(stored))
	return bracket, nil
}

func replayNode(b *engine.Bracket, n models.BracketNode) error {
	switch n.Status {
	case models.NodeAwaiting, models.NodePending, models.NodeBye, models.NodeCancelled:
		return nil
	}

	if n.ScheduledAt != nil && n.Venue != nil {
		court := ""
		if n.Court != nil {
			court = *n.Court
		}
		if err := b.Schedule(n.ID, *n.Venue, court, *n.ScheduledAt); err != nil {
			return err
		}
	}

	switch n.Status {
	case models.NodeScheduled:
		return nil
	case models.NodeInProgress:
		// Snapshots written before reopen demoted unscheduled nodes back to
		// pending can hold in_progress rows without a schedule; leave those
		// pending, they are playable either way.
		if n.ScheduledAt == nil {
			return nil
		}
		return b.Start(n.ID, *n.ScheduledAt)
	case models.NodeForfeit:
		reason := ""
		if n.ForfeitReason != nil {
			reason = *n.ForfeitReason
		}
		return b.ReportResult(engine.Result{NodeID: n.ID, ForfeitBy: n.ForfeitEntrantID, Reason: reason})
	case models.NodeCompleted:
		res := engine.Result{NodeID: n.ID}
		if n.ScoreA != nil {
			res.ScoreA = *n.ScoreA
		}
		if n.ScoreB != nil {
			res.ScoreB = *n.ScoreB
		}
		return b.ReportResult(res)
	}
	return nil
}
