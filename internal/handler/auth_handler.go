package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/roshambo/internal/auth"
)

// AuthHandler issues guest tokens and refreshes them.
type AuthHandler struct {
	jwtMgr *auth.JWTManager
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(jwtMgr *auth.JWTManager) *AuthHandler {
	return &AuthHandler{jwtMgr: jwtMgr}
}

// Guest handles POST /auth/guest: a token pair for a brand-new player ID.
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	playerID := auth.NewGuestID()
	tokens, err := h.jwtMgr.GenerateTokenPair(playerID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate guest tokens")
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	log.Info().Str("playerId", playerID).Msg("Guest player created")
	writeJSON(w, http.StatusCreated, tokens)
}

// RefreshToken handles POST /auth/refresh.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.jwtMgr.Refresh(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}
