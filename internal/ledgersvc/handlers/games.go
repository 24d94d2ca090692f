package handlers

import (
	"net/http"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/query"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/service"
)

// ListGames takes scope, date_from, date_to, player_id, hand and limit.
// Scope defaults to today.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	f, err := query.Parse(r.URL.Query(), query.ScopeToday, h.loc)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	games, err := h.Games.ListGames(r.Context(), f)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Message: "games", Code: http.StatusOK, Data: games})
}

func (h *Handler) RecordGame(w http.ResponseWriter, r *http.Request) {
	var req service.RecordGameRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	g, err := h.Games.RecordGame(r.Context(), req)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Message: "game recorded", Code: http.StatusCreated, Data: g})
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	g, err := h.Games.GetGame(r.Context(), id)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Message: "game", Code: http.StatusOK, Data: g})
}

func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	if err := h.Games.DeleteGame(r.Context(), id); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Message: "game deleted", Code: http.StatusOK, Data: map[string]int64{"id": id}})
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.Stats.Leaderboard(r.Context())
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Message: "leaderboard", Code: http.StatusOK, Data: board})
}

// HandStats takes scope, date_from, date_to, player_id and hand. Scope
// defaults to today.
func (h *Handler) HandStats(w http.ResponseWriter, r *http.Request) {
	f, err := query.Parse(r.URL.Query(), query.ScopeToday, h.loc)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	counts, err := h.Stats.HandCounts(r.Context(), f)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Message: "hand stats", Code: http.StatusOK, Data: counts})
}

func (h *Handler) Rivalry(w http.ResponseWriter, r *http.Request) {
	a, err := queryID(r, "player1")
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	b, err := queryID(r, "player2")
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	rv, err := h.Stats.Rivalry(r.Context(), a, b)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Message: "rivalry", Code: http.StatusOK, Data: rv})
}
