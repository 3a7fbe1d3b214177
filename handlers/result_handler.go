package handlers

import (
	"net/http"

	"github.com/courtline/bracket-engine/middleware"
	"github.com/courtline/bracket-engine/services"
)

type ResultHandler struct {
	resultService services.ResultService
}

func NewResultHandler(rs services.ResultService) *ResultHandler {
	return &ResultHandler{resultService: rs}
}

func (h *ResultHandler) ids(w http.ResponseWriter, r *http.Request) (userID, tournamentID, nodeID int, ok bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return 0, 0, 0, false
	}
	tournamentID, err = getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, 0, false
	}
	nodeID, err = getIDFromURL(r, "nodeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, 0, false
	}
	return userID, tournamentID, nodeID, true
}

// ScheduleHandler handles POST /tournaments/{tournamentID}/nodes/{nodeID}/schedule.
func (h *ResultHandler) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, nodeID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var input services.ScheduleMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	node, err := h.resultService.Schedule(r.Context(), userID, tournamentID, nodeID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"node": node}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartHandler handles POST /tournaments/{tournamentID}/nodes/{nodeID}/start.
func (h *ResultHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, nodeID, ok := h.ids(w, r)
	if !ok {
		return
	}

	node, err := h.resultService.Start(r.Context(), userID, tournamentID, nodeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"node": node}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReportHandler handles POST /tournaments/{tournamentID}/nodes/{nodeID}/result.
func (h *ResultHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, nodeID, ok := h.ids(w, r)
	if !ok {
		return
	}

	var input services.ReportResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	node, err := h.resultService.Report(r.Context(), userID, tournamentID, nodeID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"node": node}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReopenHandler handles POST /tournaments/{tournamentID}/nodes/{nodeID}/reopen.
func (h *ResultHandler) ReopenHandler(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, nodeID, ok := h.ids(w, r)
	if !ok {
		return
	}

	node, err := h.resultService.Reopen(r.Context(), userID, tournamentID, nodeID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"node": node}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceSwissHandler handles POST /tournaments/{tournamentID}/swiss/advance.
func (h *ResultHandler) AdvanceSwissHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	nodes, err := h.resultService.AdvanceSwissRound(r.Context(), userID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"nodes": nodes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
