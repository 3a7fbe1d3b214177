package services

import (
	"context"
	"errors"
	"testing"

	"github.com/courtline/bracket-engine/models"
	"github.com/courtline/bracket-engine/repositories"
)

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	t.ID = r.nextID
	r.nextID++
	cp := *t
	r.tournaments[t.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, _ repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	cp := *t
	r.tournaments[t.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

func seedTournament(repo *fakeTournamentRepo, status models.TournamentStatus) *models.Tournament {
	t := &models.Tournament{
		Name:        "Spring Open",
		Format:      models.FormatSingleElimination,
		Status:      status,
		MinTeams:    2,
		MaxTeams:    16,
		OrganizerID: 7,
	}
	_ = repo.Create(context.Background(), t)
	repo.tournaments[t.ID].Status = status
	return t
}

func TestCreateTournamentValidation(t *testing.T) {
	svc := NewTournamentService(newFakeTournamentRepo())
	ctx := context.Background()

	cases := []struct {
		name       string
		tournament models.Tournament
		wantErr    error
	}{
		{"empty name", models.Tournament{Format: models.FormatSwiss, MinTeams: 2, MaxTeams: 8}, ErrTournamentNameRequired},
		{"unknown format", models.Tournament{Name: "x", Format: "ladder", MinTeams: 2, MaxTeams: 8}, ErrValidationFailed},
		{"zero capacity", models.Tournament{Name: "x", Format: models.FormatSwiss, MinTeams: 0, MaxTeams: 8}, ErrTournamentInvalidCap},
		{"min above max", models.Tournament{Name: "x", Format: models.FormatSwiss, MinTeams: 9, MaxTeams: 8}, ErrTournamentInvalidRange},
	}
	for _, tc := range cases {
		tournament := tc.tournament
		if err := svc.Create(ctx, &tournament); !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.wantErr)
		}
	}

	valid := models.Tournament{Name: "Spring Open", Format: models.FormatSwiss, MinTeams: 2, MaxTeams: 8, OrganizerID: 7}
	if err := svc.Create(ctx, &valid); err != nil {
		t.Fatalf("valid tournament rejected: %v", err)
	}
	if valid.Status != models.StatusDraft {
		t.Fatalf("new tournament status = %s, want draft", valid.Status)
	}
	if valid.ID == 0 {
		t.Fatal("expected an id to be assigned")
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()

	allowed := []struct {
		from, to models.TournamentStatus
	}{
		{models.StatusDraft, models.StatusRegistrationOpen},
		{models.StatusRegistrationOpen, models.StatusRegistrationClosed},
		{models.StatusRegistrationClosed, models.StatusRegistrationOpen},
		{models.StatusRegistrationClosed, models.StatusInProgress},
		{models.StatusInProgress, models.StatusCompleted},
		{models.StatusInProgress, models.StatusCancelled},
		{models.StatusDraft, models.StatusCancelled},
	}
	for _, tc := range allowed {
		repo := newFakeTournamentRepo()
		svc := NewTournamentService(repo)
		tournament := seedTournament(repo, tc.from)
		updated, err := svc.UpdateStatus(ctx, 7, tournament.ID, tc.to)
		if err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
			continue
		}
		if updated.Status != tc.to {
			t.Errorf("%s -> %s: status not applied", tc.from, tc.to)
		}
	}

	rejected := []struct {
		from, to models.TournamentStatus
	}{
		{models.StatusDraft, models.StatusInProgress},
		{models.StatusRegistrationOpen, models.StatusCompleted},
		{models.StatusCompleted, models.StatusInProgress},
		{models.StatusCancelled, models.StatusDraft},
		{models.StatusCompleted, models.StatusCancelled},
	}
	for _, tc := range rejected {
		repo := newFakeTournamentRepo()
		svc := NewTournamentService(repo)
		tournament := seedTournament(repo, tc.from)
		if _, err := svc.UpdateStatus(ctx, 7, tournament.ID, tc.to); !errors.Is(err, ErrInvalidStatusTransition) {
			t.Errorf("%s -> %s: got %v, want ErrInvalidStatusTransition", tc.from, tc.to, err)
		}
	}
}

func TestUpdateStatusRequiresOwnership(t *testing.T) {
	repo := newFakeTournamentRepo()
	svc := NewTournamentService(repo)
	tournament := seedTournament(repo, models.StatusDraft)

	if _, err := svc.UpdateStatus(context.Background(), 99, tournament.ID, models.StatusRegistrationOpen); !errors.Is(err, ErrForbiddenOperation) {
		t.Fatalf("got %v, want ErrForbiddenOperation", err)
	}
}

func TestUpdateFrozenAfterRegistrationCloses(t *testing.T) {
	repo := newFakeTournamentRepo()
	svc := NewTournamentService(repo)
	tournament := seedTournament(repo, models.StatusRegistrationClosed)

	edit := models.Tournament{Name: "Renamed", Format: models.FormatSwiss, MinTeams: 2, MaxTeams: 8}
	if err := svc.Update(context.Background(), 7, tournament.ID, &edit); !errors.Is(err, ErrTournamentNotEditable) {
		t.Fatalf("got %v, want ErrTournamentNotEditable", err)
	}
}

func TestDeleteOnlyDraftOrCancelled(t *testing.T) {
	ctx := context.Background()

	repo := newFakeTournamentRepo()
	svc := NewTournamentService(repo)
	live := seedTournament(repo, models.StatusInProgress)
	if err := svc.Delete(ctx, 7, live.ID); !errors.Is(err, ErrTournamentNotDeletable) {
		t.Fatalf("got %v, want ErrTournamentNotDeletable", err)
	}

	draft := seedTournament(repo, models.StatusDraft)
	if err := svc.Delete(ctx, 7, draft.ID); err != nil {
		t.Fatalf("deleting draft: %v", err)
	}
	if _, err := svc.GetByID(ctx, draft.ID); !errors.Is(err, repositories.ErrTournamentNotFound) {
		t.Fatalf("draft still present after delete: %v", err)
	}
}
