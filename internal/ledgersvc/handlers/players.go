package handlers

import (
	"net/http"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/query"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/service"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/stats"
)

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.Players.ListPlayers(r.Context())
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Message: "players", Code: http.StatusOK, Data: players})
}

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	p, err := h.Players.CreatePlayer(r.Context(), req.Name)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Message: "player created", Code: http.StatusCreated, Data: p})
}

// PlayerStats takes mode, scope, date_from, date_to and hand. Scope
// defaults to all time.
func (h *Handler) PlayerStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	mode, err := stats.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.ErrorResponse(w, r, &service.ValidationError{Field: "mode", Message: `must be "full" or "simplified"`})
		return
	}
	f, err := query.Parse(r.URL.Query(), query.ScopeAll, h.loc)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}

	s, err := h.Stats.PlayerStats(r.Context(), id, f, mode)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Message: "player stats", Code: http.StatusOK, Data: s})
}

func (h *Handler) PlayerAchievements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	a, err := h.Stats.Achievements(r.Context(), id)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Message: "player achievements", Code: http.StatusOK, Data: a})
}

func (h *Handler) PlayerInsight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	in, err := h.Insights.PlayerInsight(r.Context(), id)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	h.CreateResponse(w, Response{Message: "player insight", Code: http.StatusOK, Data: in})
}
