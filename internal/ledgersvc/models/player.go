package models

import (
	"time"
)

// Player represents the players table in the ledger.
type Player struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"` // unique, case-sensitive as stored
	CreatedAt time.Time `json:"created_at"`
}
