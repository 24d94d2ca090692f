package stats

import (
	"sort"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
)

type HandCount struct {
	Hand string `json:"hand"`
	Wins int64  `json:"wins"`
}

// HandCounts counts wins per non-empty hand label, most frequent first,
// then by label.
func HandCounts(records []models.GameRecord) []HandCount {
	byHand := map[string]int64{}
	for _, g := range records {
		if g.WinningHand != "" {
			byHand[g.WinningHand]++
		}
	}
	out := make([]HandCount, 0, len(byHand))
	for hand, wins := range byHand {
		out = append(out, HandCount{Hand: hand, Wins: wins})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Hand < out[j].Hand
	})
	return out
}
