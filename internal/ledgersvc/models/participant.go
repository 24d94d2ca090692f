package models

type Participant struct {
	ID         int64  `json:"id"`      // Primary key
	GameID     int64  `json:"game_id"` // FK to games(id)
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
	BetAmount  int64  `json:"bet_amount"`
}
