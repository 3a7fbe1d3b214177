package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/courtline/bracket-engine/models"
	"github.com/courtline/bracket-engine/repositories"
)

type EntrantService interface {
	Register(ctx context.Context, entrant *models.Entrant) error
	GetByID(ctx context.Context, id int) (*models.Entrant, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Entrant, error)
	Approve(ctx context.Context, requesterID, entrantID int) error
	Withdraw(ctx context.Context, entrantID int) error
	AssignSeeds(ctx context.Context, requesterID, tournamentID int, seedsByEntrant map[int]int) error
}

type entrantService struct {
	entrantRepo    repositories.EntrantRepository
	tournamentRepo repositories.TournamentRepository
}

func NewEntrantService(
	entrantRepo repositories.EntrantRepository,
	tournamentRepo repositories.TournamentRepository,
) EntrantService {
	return &entrantService{
		entrantRepo:    entrantRepo,
		tournamentRepo: tournamentRepo,
	}
}

// Register enrolls a team into an open tournament. The team itself lives in
// the external team registry; only its id and display name are captured
// here. The seed starts at zero and is assigned later by the organizer.
func (s *entrantService) Register(ctx context.Context, e *models.Entrant) error {
	if strings.TrimSpace(e.DisplayName) == "" {
		return ErrDisplayNameRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, e.TournamentID)
	if err != nil {
		return err
	}
	if tournament.Status != models.StatusRegistrationOpen {
		return ErrRegistrationNotOpen
	}

	entrants, err := s.entrantRepo.ListByTournament(ctx, e.TournamentID)
	if err != nil {
		return err
	}
	active := 0
	for _, existing := range entrants {
		if existing.Status != models.EntrantWithdrawn {
			active++
		}
	}
	if active >= tournament.MaxTeams {
		return ErrTournamentFull
	}

	e.Seed = 0
	e.Status = models.EntrantRegistered
	return s.entrantRepo.Create(ctx, e)
}

func (s *entrantService) GetByID(ctx context.Context, id int) (*models.Entrant, error) {
	return s.entrantRepo.GetByID(ctx, id)
}

func (s *entrantService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Entrant, error) {
	return s.entrantRepo.ListByTournament(ctx, tournamentID)
}

func (s *entrantService) Approve(ctx context.Context, requesterID, entrantID int) error {
	entrant, err := s.entrantRepo.GetByID(ctx, entrantID)
	if err != nil {
		return err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, entrant.TournamentID)
	if err != nil {
		return err
	}
	if tournament.OrganizerID != requesterID {
		return ErrForbiddenOperation
	}
	if tournament.Status != models.StatusRegistrationOpen && tournament.Status != models.StatusRegistrationClosed {
		return ErrTournamentWrongStatus
	}
	entrant.Status = models.EntrantApproved
	return s.entrantRepo.Update(ctx, nil, entrant)
}

// Withdraw removes an entrant before bracket generation. After generation
// teams leave through forfeits, never by vanishing from the graph.
func (s *entrantService) Withdraw(ctx context.Context, entrantID int) error {
	entrant, err := s.entrantRepo.GetByID(ctx, entrantID)
	if err != nil {
		return err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, entrant.TournamentID)
	if err != nil {
		return err
	}
	switch tournament.Status {
	case models.StatusDraft, models.StatusRegistrationOpen, models.StatusRegistrationClosed:
	default:
		return ErrEntrantNotWithdrawable
	}
	entrant.Status = models.EntrantWithdrawn
	entrant.Seed = 0
	return s.entrantRepo.Update(ctx, nil, entrant)
}

// AssignSeeds sets the full seeding for a tournament in one shot. Seeds must
// cover 1..N over the approved entrants exactly; partial reseeds would leave
// the field ambiguous.
func (s *entrantService) AssignSeeds(ctx context.Context, requesterID, tournamentID int, seedsByEntrant map[int]int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return err
	}
	if tournament.OrganizerID != requesterID {
		return ErrForbiddenOperation
	}
	if tournament.Status != models.StatusRegistrationClosed {
		return ErrTournamentWrongStatus
	}

	entrants, err := s.entrantRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return err
	}
	approved := make(map[int]bool)
	for _, e := range entrants {
		if e.Status == models.EntrantApproved {
			approved[e.ID] = true
		}
	}

	if len(seedsByEntrant) != len(approved) {
		return fmt.Errorf("%w: got %d seeds for %d approved entrants",
			ErrSeedsNotContiguous, len(seedsByEntrant), len(approved))
	}
	seeds := make([]int, 0, len(seedsByEntrant))
	for entrantID, seed := range seedsByEntrant {
		if !approved[entrantID] {
			return fmt.Errorf("%w: entrant %d is not an approved entrant of tournament %d",
				ErrValidationFailed, entrantID, tournamentID)
		}
		seeds = append(seeds, seed)
	}
	sort.Ints(seeds)
	for i, seed := range seeds {
		if seed != i+1 {
			return ErrSeedsNotContiguous
		}
	}

	return s.entrantRepo.UpdateSeeds(ctx, nil, tournamentID, seedsByEntrant)
}
