package main

import (
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/stats"
)

func playersTable(players []models.Player) pterm.TableData {
	data := pterm.TableData{{"ID", "Name", "Since"}}
	for _, p := range players {
		data = append(data, []string{itoa(p.ID), p.Name, p.CreatedAt.Format("2006-01-02")})
	}
	return data
}

func gamesTable(games []models.GameRecord, loc *time.Location) pterm.TableData {
	data := pterm.TableData{{"ID", "Played", "Winner", "Pot", "Hand", "Players"}}
	for _, g := range games {
		hand := g.WinningHand
		if hand == "" {
			hand = "-"
		}
		data = append(data, []string{
			itoa(g.ID),
			g.PlayedAt.In(loc).Format("2006-01-02 15:04"),
			g.WinnerName,
			itoa(g.PotAmount),
			hand,
			strconv.Itoa(len(g.Participants)),
		})
	}
	return data
}

func leaderboardTable(entries []stats.LeaderboardEntry) pterm.TableData {
	data := pterm.TableData{{"#", "Player", "Games", "Wins", "Win %", "Profit"}}
	for _, e := range entries {
		data = append(data, []string{
			strconv.Itoa(e.Rank),
			e.Name,
			itoa(e.TotalGames),
			itoa(e.TotalWins),
			percent(e.WinRate),
			signed(e.Profit),
		})
	}
	return data
}

func statsTable(s stats.PlayerStats) pterm.TableData {
	data := pterm.TableData{
		{"Metric", "Value"},
		{"Mode", string(s.Mode)},
		{"Games", itoa(s.TotalGames)},
		{"Wins", itoa(s.TotalWins)},
		{"Win %", percent(s.WinRate)},
	}
	if s.BetTracked {
		data = append(data, []string{"Bet", itoa(s.TotalBet)})
	}
	data = append(data,
		[]string{"Won", itoa(s.TotalWon)},
		[]string{"Profit", signed(s.Profit)},
	)
	return data
}

func achievementsTable(list []stats.Achievement) pterm.TableData {
	data := pterm.TableData{{"Achievement", "Description"}}
	for _, a := range list {
		data = append(data, []string{a.Title, a.Description})
	}
	return data
}

func handsTable(counts []stats.HandCount) pterm.TableData {
	data := pterm.TableData{{"Hand", "Wins"}}
	for _, c := range counts {
		data = append(data, []string{c.Hand, itoa(c.Wins)})
	}
	return data
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func signed(n int64) string {
	if n > 0 {
		return "+" + itoa(n)
	}
	return itoa(n)
}

func percent(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64) + "%"
}
