package stats

import "github.com/avvvet/poker-ledger/internal/ledgersvc/models"

type RivalSide struct {
	PlayerID  int64  `json:"id"`
	Name      string `json:"name"`
	TotalWins int64  `json:"total_wins"`
	TotalWon  int64  `json:"total_won"`
}

// Rivalry puts two players' all-time results side by side. It does not
// look at games the two shared.
type Rivalry struct {
	Player1 RivalSide `json:"player1"`
	Player2 RivalSide `json:"player2"`
}

func Compare(a, b models.Player, totals map[int64]*Totals) Rivalry {
	side := func(p models.Player) RivalSide {
		s := RivalSide{PlayerID: p.ID, Name: p.Name}
		if t := totals[p.ID]; t != nil {
			s.TotalWins, s.TotalWon = t.Wins, t.Won
		}
		return s
	}
	return Rivalry{Player1: side(a), Player2: side(b)}
}
