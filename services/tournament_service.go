package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/courtline/bracket-engine/models"
	"github.com/courtline/bracket-engine/repositories"
)

// validStatusTransitions is the tournament lifecycle. Anything not listed
// is rejected. Cancellation is reachable from every live state.
var validStatusTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusDraft:              {models.StatusRegistrationOpen, models.StatusCancelled},
	models.StatusRegistrationOpen:   {models.StatusRegistrationClosed, models.StatusCancelled},
	models.StatusRegistrationClosed: {models.StatusRegistrationOpen, models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress:         {models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted:          {},
	models.StatusCancelled:          {},
}

func transitionAllowed(from, to models.TournamentStatus) bool {
	for _, s := range validStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type TournamentService interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, requesterID, id int, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, requesterID, id int, status models.TournamentStatus) (*models.Tournament, error)
	Delete(ctx context.Context, requesterID, id int) error
}

type tournamentService struct {
	repo repositories.TournamentRepository
}

func NewTournamentService(repo repositories.TournamentRepository) TournamentService {
	return &tournamentService{repo: repo}
}

func (s *tournamentService) Create(ctx context.Context, t *models.Tournament) error {
	if err := validateTournament(t); err != nil {
		return err
	}
	t.Status = models.StatusDraft
	return s.repo.Create(ctx, t)
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.repo.List(ctx, filter)
}

// Update rewrites the editable fields of a tournament. Once registration is
// closed the format and its options are frozen; only draft and open
// tournaments accept edits.
func (s *tournamentService) Update(ctx context.Context, requesterID, id int, t *models.Tournament) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.OrganizerID != requesterID {
		return ErrForbiddenOperation
	}
	if current.Status != models.StatusDraft && current.Status != models.StatusRegistrationOpen {
		return ErrTournamentNotEditable
	}
	if err := validateTournament(t); err != nil {
		return err
	}
	t.ID = id
	t.OrganizerID = current.OrganizerID
	t.Status = current.Status
	return s.repo.Update(ctx, t)
}

func (s *tournamentService) UpdateStatus(ctx context.Context, requesterID, id int, status models.TournamentStatus) (*models.Tournament, error) {
	switch status {
	case models.StatusDraft, models.StatusRegistrationOpen, models.StatusRegistrationClosed,
		models.StatusInProgress, models.StatusCompleted, models.StatusCancelled:
	default:
		return nil, ErrTournamentInvalidStatus
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.OrganizerID != requesterID {
		return nil, ErrForbiddenOperation
	}
	if !transitionAllowed(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current.Status, status)
	}
	if err := s.repo.UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, err
	}
	current.Status = status
	return current, nil
}

func (s *tournamentService) Delete(ctx context.Context, requesterID, id int) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.OrganizerID != requesterID {
		return ErrForbiddenOperation
	}
	if current.Status != models.StatusDraft && current.Status != models.StatusCancelled {
		return ErrTournamentNotDeletable
	}
	return s.repo.Delete(ctx, id)
}

func validateTournament(t *models.Tournament) error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrTournamentNameRequired
	}
	switch t.Format {
	case models.FormatSingleElimination, models.FormatDoubleElimination,
		models.FormatRoundRobin, models.FormatSwiss, models.FormatGroupKnockout:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrValidationFailed, t.Format)
	}
	if t.MinTeams <= 0 || t.MaxTeams <= 0 {
		return ErrTournamentInvalidCap
	}
	if t.MinTeams > t.MaxTeams {
		return ErrTournamentInvalidRange
	}
	if t.Format == models.FormatGroupKnockout && t.GroupCount < 0 {
		return fmt.Errorf("%w: group count must not be negative", ErrValidationFailed)
	}
	if t.SwissRounds < 0 {
		return fmt.Errorf("%w: swiss rounds must not be negative", ErrValidationFailed)
	}
	if t.PointsWin < 0 || t.PointsDraw < 0 || t.PointsLoss < 0 {
		return fmt.Errorf("%w: point schedule must not be negative", ErrValidationFailed)
	}
	return nil
}
