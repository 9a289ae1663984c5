package handler

import (
	"net/http"
	"strconv"

	"github.com/freeeve/roshambo/internal/auth"
	"github.com/freeeve/roshambo/internal/service"
	"github.com/freeeve/roshambo/pkg/rpsls"
)

// MatchHandler serves the match REST endpoints.
type MatchHandler struct {
	svc *service.MatchService
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(svc *service.MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

// CreateMatch handles POST /api/v1/matches.
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.CreateMatch(r.Context(), auth.PlayerIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// GetMatch handles GET /api/v1/matches/{id}.
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GetMatch(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ListMatches handles GET /api/v1/matches?limit=N.
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	matches, err := h.svc.ListMatches(r.Context(), auth.PlayerIDFromContext(r.Context()), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if matches == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// ListRecent handles GET /api/v1/matches/recent?limit=N: the latest
// finished matches of every player.
func (h *MatchHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	matches, err := h.svc.ListRecent(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if matches == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

type playRequest struct {
	Move string `json:"move"`
}

// PlayMove handles POST /api/v1/matches/{id}/moves.
func (h *MatchHandler) PlayMove(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	move, err := rpsls.ParseMove(req.Move)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	round, err := h.svc.Play(r.Context(), r.PathValue("id"), auth.PlayerIDFromContext(r.Context()), move)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

// FinishMatch handles POST /api/v1/matches/{id}/finish.
func (h *MatchHandler) FinishMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Finish(r.Context(), r.PathValue("id"), auth.PlayerIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
