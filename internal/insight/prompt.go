package insight

import (
	"fmt"
	"strings"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/stats"
)

const systemRole = "You are a witty poker commentator for a friendly home game. " +
	"Answer in at most three short sentences. Do not invent numbers."

// PlayerPrompt asks for commentary on a player's all-time record.
func PlayerPrompt(s stats.PlayerStats, achievements []string, maxTokens int) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Player: %s\n", s.Name)
	fmt.Fprintf(&b, "Games played: %d\n", s.TotalGames)
	fmt.Fprintf(&b, "Games won: %d (win rate %.2f%%)\n", s.TotalWins, s.WinRate)
	fmt.Fprintf(&b, "Total won: %d\n", s.TotalWon)
	if s.BetTracked {
		fmt.Fprintf(&b, "Total bet: %d\n", s.TotalBet)
	}
	fmt.Fprintf(&b, "Profit: %d\n", s.Profit)
	if len(achievements) > 0 {
		fmt.Fprintf(&b, "Achievements: %s\n", strings.Join(achievements, ", "))
	}
	b.WriteString("Give a short playful assessment of this player's style.")
	return Prompt{Input: b.String(), SystemRole: systemRole, MaxTokens: maxTokens}
}

// GamePrompt asks for commentary on one recorded hand.
func GamePrompt(g models.GameRecord, maxTokens int) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Winner: %s\n", g.WinnerName)
	fmt.Fprintf(&b, "Pot: %d\n", g.PotAmount)
	if g.WinningHand != "" {
		fmt.Fprintf(&b, "Winning hand: %s\n", g.WinningHand)
	}
	for _, p := range g.Participants {
		fmt.Fprintf(&b, "- %s bet %d\n", p.PlayerName, p.BetAmount)
	}
	if notes := strings.TrimSpace(g.Notes); notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", notes)
	}
	b.WriteString("Describe how this hand went in one or two sentences.")
	return Prompt{Input: b.String(), SystemRole: systemRole, MaxTokens: maxTokens}
}
