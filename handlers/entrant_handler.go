package handlers

import (
	"net/http"

	"github.com/courtline/bracket-engine/middleware"
	"github.com/courtline/bracket-engine/models"
	"github.com/courtline/bracket-engine/services"
)

type EntrantHandler struct {
	entrantService services.EntrantService
}

func NewEntrantHandler(es services.EntrantService) *EntrantHandler {
	return &EntrantHandler{entrantService: es}
}

// RegisterHandler handles POST /tournaments/{tournamentID}/entrants.
func (h *EntrantHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		TeamID      int    `json:"team_id"`
		DisplayName string `json:"display_name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entrant := models.Entrant{
		TournamentID: tournamentID,
		TeamID:       input.TeamID,
		DisplayName:  input.DisplayName,
	}
	if err := h.entrantService.Register(r.Context(), &entrant); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"entrant": entrant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments/{tournamentID}/entrants.
func (h *EntrantHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entrants, err := h.entrantService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entrants": entrants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ApproveHandler handles POST /entrants/{entrantID}/approve.
func (h *EntrantHandler) ApproveHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	entrantID, err := getIDFromURL(r, "entrantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.entrantService.Approve(r.Context(), currentUserID, entrantID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WithdrawHandler handles POST /entrants/{entrantID}/withdraw.
func (h *EntrantHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	entrantID, err := getIDFromURL(r, "entrantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.entrantService.Withdraw(r.Context(), entrantID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignSeedsHandler handles PUT /tournaments/{tournamentID}/seeds. The body
// maps entrant ids to seeds and must cover every approved entrant.
func (h *EntrantHandler) AssignSeedsHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Seeds map[int]int `json:"seeds"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.entrantService.AssignSeeds(r.Context(), currentUserID, tournamentID, input.Seeds); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
