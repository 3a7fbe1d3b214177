package handlers

import (
	"net/http"

	"github.com/courtline/bracket-engine/middleware"
	"github.com/courtline/bracket-engine/services"
)

type BracketHandler struct {
	bracketService   services.BracketService
	standingsService services.StandingsService
}

func NewBracketHandler(bs services.BracketService, ss services.StandingsService) *BracketHandler {
	return &BracketHandler{
		bracketService:   bs,
		standingsService: ss,
	}
}

// GenerateHandler handles POST /tournaments/{tournamentID}/bracket.
func (h *BracketHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
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

	nodes, err := h.bracketService.Generate(r.Context(), currentUserID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"nodes": nodes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// NodesHandler handles GET /tournaments/{tournamentID}/bracket.
func (h *BracketHandler) NodesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	nodes, err := h.bracketService.Nodes(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"nodes": nodes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler handles GET /tournaments/{tournamentID}/standings.
// An optional ?group=A narrows the response to one table.
func (h *BracketHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if groupStr := r.URL.Query().Get("group"); groupStr != "" {
		standings, err := h.standingsService.Standings(r.Context(), tournamentID, &groupStr)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	standings, err := h.standingsService.AllStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RankingHandler handles GET /tournaments/{tournamentID}/ranking.
func (h *BracketHandler) RankingHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	ranking, err := h.bracketService.Ranking(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ranking": ranking}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
