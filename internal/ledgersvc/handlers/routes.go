package handlers

import (
	"github.com/go-chi/chi"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Get("/health", h.HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.ListPlayers)
			r.Post("/", h.CreatePlayer)
			r.Get("/{id}/stats", h.PlayerStats)
			r.Get("/{id}/achievements", h.PlayerAchievements)
			r.Get("/{id}/insight", h.PlayerInsight)
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/", h.ListGames)
			r.Post("/", h.RecordGame)
			r.Get("/{id}", h.GetGame)
			r.Delete("/{id}", h.DeleteGame)
		})

		r.Get("/leaderboard", h.Leaderboard)
		r.Get("/hands", h.HandStats)
		r.Get("/rivalry", h.Rivalry)
	})
}
