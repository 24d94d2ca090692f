// Package stats derives per-player and cross-player metrics from game
// records. Every function here is pure: the same records give the same
// result.
package stats

import (
	"fmt"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/shopspring/decimal"
)

// Mode selects how participation is counted.
type Mode string

const (
	// ModeFull counts participations and bets from participant rows.
	ModeFull Mode = "full"
	// ModeSimplified only trusts win events: games equal wins and bets are
	// not tracked.
	ModeSimplified Mode = "simplified"
)

// ParseMode accepts "", "full" and "simplified". Empty means full.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeFull:
		return ModeFull, nil
	case ModeSimplified:
		return ModeSimplified, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Totals are one player's raw counters over a set of games.
type Totals struct {
	Games    int64
	Wins     int64
	Bet      int64
	Won      int64
	HandWins map[string]int64
}

// Tally groups records by player in a single pass. A player appears in the
// result if they participated in or won at least one record.
func Tally(records []models.GameRecord) map[int64]*Totals {
	out := make(map[int64]*Totals)
	get := func(id int64) *Totals {
		t, ok := out[id]
		if !ok {
			t = &Totals{HandWins: map[string]int64{}}
			out[id] = t
		}
		return t
	}

	for _, g := range records {
		seen := make(map[int64]bool, len(g.Participants))
		for _, p := range g.Participants {
			t := get(p.PlayerID)
			t.Bet += p.BetAmount
			if !seen[p.PlayerID] {
				seen[p.PlayerID] = true
				t.Games++
			}
		}

		w := get(g.WinnerID)
		w.Wins++
		w.Won += g.PotAmount
		if g.WinningHand != "" {
			w.HandWins[g.WinningHand]++
		}
	}
	return out
}

// PlayerStats is the aggregate view of one player.
type PlayerStats struct {
	PlayerID   int64   `json:"id"`
	Name       string  `json:"name"`
	Mode       Mode    `json:"mode"`
	BetTracked bool    `json:"bet_tracked"`
	TotalGames int64   `json:"total_games"`
	TotalWins  int64   `json:"total_wins"`
	TotalBet   int64   `json:"total_bet"`
	TotalWon   int64   `json:"total_won"`
	Profit     int64   `json:"profit"`
	WinRate    float64 `json:"win_rate"`
}

// Aggregate builds the player's stats from their totals. A nil t is a player
// with no matching games.
func Aggregate(p models.Player, t *Totals, mode Mode) PlayerStats {
	if t == nil {
		t = &Totals{}
	}
	s := PlayerStats{
		PlayerID:  p.ID,
		Name:      p.Name,
		Mode:      mode,
		TotalWins: t.Wins,
		TotalWon:  t.Won,
	}
	switch mode {
	case ModeSimplified:
		s.TotalGames = t.Wins
		s.Profit = t.Won
	default:
		s.Mode = ModeFull
		s.BetTracked = true
		s.TotalGames = t.Games
		s.TotalBet = t.Bet
		s.Profit = t.Won - t.Bet
	}
	s.WinRate = WinRate(s.TotalWins, s.TotalGames)
	return s
}

// WinRate is wins/games as a percentage rounded to 2 places, 0 with no games.
func WinRate(wins, games int64) float64 {
	if games == 0 {
		return 0
	}
	rate := decimal.NewFromInt(wins).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(games), 2)
	return rate.InexactFloat64()
}
