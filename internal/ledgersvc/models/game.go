package models

import "time"

type Game struct {
	ID          int64     `json:"id"`           // Primary key
	WinnerID    int64     `json:"winner_id"`    // FK to players(id)
	PotAmount   int64     `json:"pot_amount"`   // Total taken by the winner
	WinningHand string    `json:"winning_hand"` // Open label, empty when unknown
	AIAnalysis  *string   `json:"ai_analysis"`  // Cosmetic, nil until enriched
	PlayedAt    time.Time `json:"played_at"`
	Notes       string    `json:"notes"`
}

// GameRecord is a game joined with its winner's name and participants.
type GameRecord struct {
	Game
	WinnerName   string        `json:"winner_name"`
	Participants []Participant `json:"participants"`
}

// NewGame is the write model for one completed hand.
type NewGame struct {
	WinnerID     int64
	PotAmount    int64
	WinningHand  string
	Notes        string
	PlayedAt     time.Time // zero means now
	Participants []NewParticipant
}

type NewParticipant struct {
	PlayerID  int64
	BetAmount int64
}

// GameQuery selects games by played time and label. From is inclusive, To
// exclusive; nil bounds are open. Limit <= 0 returns every matching game.
type GameQuery struct {
	From     *time.Time
	To       *time.Time
	WinnerID int64
	Hand     string
	Limit    int
}
