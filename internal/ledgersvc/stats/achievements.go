package stats

import "github.com/avvvet/poker-ledger/internal/ledgersvc/models"

// Counters are the all-time numbers achievements are judged on.
type Counters struct {
	TotalWins int64
	TotalWon  int64
	HandWins  map[string]int64
}

// Counters extracts achievement counters from t. A nil t has none.
func (t *Totals) Counters() Counters {
	if t == nil {
		return Counters{}
	}
	return Counters{TotalWins: t.Wins, TotalWon: t.Won, HandWins: t.HandWins}
}

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	unlocked func(Counters) bool
}

func winsAtLeast(n int64) func(Counters) bool {
	return func(c Counters) bool { return c.TotalWins >= n }
}

func wonAtLeast(n int64) func(Counters) bool {
	return func(c Counters) bool { return c.TotalWon >= n }
}

func handWinsAtLeast(hand string, n int64) func(Counters) bool {
	return func(c Counters) bool { return c.HandWins[hand] >= n }
}

// Catalog lists every achievement in evaluation order.
var Catalog = []Achievement{
	{ID: "first_win", Title: "First Blood", Description: "Win a game", unlocked: winsAtLeast(1)},
	{ID: "veteran", Title: "Veteran", Description: "Win 10 games", unlocked: winsAtLeast(10)},
	{ID: "master", Title: "Master", Description: "Win 50 games", unlocked: winsAtLeast(50)},
	{ID: "rich", Title: "High Roller", Description: "Win 100,000 in pots", unlocked: wonAtLeast(100_000)},
	{ID: "millionaire", Title: "Millionaire", Description: "Win 1,000,000 in pots", unlocked: wonAtLeast(1_000_000)},
	{ID: "royal", Title: "Royalty", Description: "Win with a Royal Flush", unlocked: handWinsAtLeast(models.HandRoyalFlush, 1)},
	{ID: "straight_flush", Title: "Straight Shooter", Description: "Win with a Straight Flush", unlocked: handWinsAtLeast(models.HandStraightFlush, 1)},
	{ID: "four_master", Title: "Quad Master", Description: "Win 3 games with Four of a Kind", unlocked: handWinsAtLeast(models.HandFourOfAKind, 3)},
	{ID: "bluffer", Title: "Bluffer", Description: "Win 5 games by Fold Win", unlocked: handWinsAtLeast(models.HandFoldWin, 5)},
}

// EvaluateAchievements returns the ids of every unlocked achievement in
// catalog order. Thresholds are inclusive.
func EvaluateAchievements(c Counters) []string {
	ids := []string{}
	for _, a := range Catalog {
		if a.unlocked(c) {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// Unlocked returns the catalog entries for ids, in catalog order.
func Unlocked(ids []string) []Achievement {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []Achievement{}
	for _, a := range Catalog {
		if want[a.ID] {
			out = append(out, a)
		}
	}
	return out
}
