package stats

import (
	"sort"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
)

type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerID   int64   `json:"id"`
	Name       string  `json:"name"`
	TotalGames int64   `json:"total_games"`
	TotalWins  int64   `json:"total_wins"`
	Profit     int64   `json:"profit"`
	WinRate    float64 `json:"win_rate"`
}

// Leaderboard ranks players by profit, highest first. Players without a
// participation are left out. Equal profits keep the order of players.
func Leaderboard(players []models.Player, totals map[int64]*Totals) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(players))
	for _, p := range players {
		s := Aggregate(p, totals[p.ID], ModeFull)
		if s.TotalGames == 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			PlayerID:   s.PlayerID,
			Name:       s.Name,
			TotalGames: s.TotalGames,
			TotalWins:  s.TotalWins,
			Profit:     s.Profit,
			WinRate:    s.WinRate,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Profit > entries[j].Profit
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
