package comm

import (
	"encoding/json"
	"time"
)

// SubjectLedgerEvents carries every ledger change notification.
const SubjectLedgerEvents = "ledger.events"

const (
	EventGameRecorded = "game-recorded"
	EventGameDeleted  = "game-deleted"
)

// Message is the envelope published on NATS.
type Message struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"` // e.g. "game-recorded"
	Data     json.RawMessage `json:"data"`
	SentAt   time.Time       `json:"sent_at"`
	Instance string          `json:"instance,omitempty"` // publishing service instance
}

type GameEvent struct {
	GameID      int64  `json:"game_id"`
	WinnerID    int64  `json:"winner_id"`
	PotAmount   int64  `json:"pot_amount"`
	WinningHand string `json:"winning_hand,omitempty"`
}
