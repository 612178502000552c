package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/arise-roster/internal/api/middleware"
	"github.com/mcoot/arise-roster/internal/api/response"
	"github.com/mcoot/arise-roster/internal/model"
	"github.com/mcoot/arise-roster/internal/services/roster"
)

// PlayerHandler handles roster endpoints
type PlayerHandler struct {
	roster *roster.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(roster *roster.Service) *PlayerHandler {
	return &PlayerHandler{roster: roster}
}

// Search handles GET /api/player/search. With nccRef it returns one
// player, otherwise the caller's whole roster.
func (h *PlayerHandler) Search(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	if ref := strings.TrimSpace(r.URL.Query().Get("nccRef")); ref != "" {
		player, err := h.roster.FindByRef(r.Context(), session, ref)
		if err != nil {
			WriteError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, player)
		return
	}

	players, err := h.roster.List(r.Context(), session)
	if err != nil {
		WriteError(w, err)
		return
	}
	if players == nil {
		players = []*model.Player{}
	}
	response.JSON(w, http.StatusOK, players)
}

// Get handles GET /api/player/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	player, err := h.roster.Get(r.Context(), middleware.GetSession(r.Context()), playerID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, player)
}

// Create handles POST /api/player
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in roster.PlayerInput
	if !decodeJSON(w, r, &in) {
		return
	}

	player, err := h.roster.Create(r.Context(), middleware.MustGetSession(r.Context()), in)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, player)
}

// Update handles PUT /api/player/{id}
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in roster.PlayerInput
	if !decodeJSON(w, r, &in) {
		return
	}

	player, err := h.roster.Update(r.Context(), middleware.MustGetSession(r.Context()), playerID(r), in)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, player)
}

// Delete handles DELETE /api/player/{id}
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.roster.Delete(r.Context(), middleware.MustGetSession(r.Context()), playerID(r)); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Message{Message: "Player deleted"})
}

func playerID(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["id"])
}
