// Package store defines the ledger persistence contract shared by the
// postgres and sqlite backends.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
)

var (
	// ErrNotFound indicates a requested player or game is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained row already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// MissingPlayerError is returned by RecordGame when the winner or a
// participant does not reference a player. It matches ErrNotFound.
type MissingPlayerError struct {
	ID int64
}

func (e *MissingPlayerError) Error() string {
	return fmt.Sprintf("player %d: %s", e.ID, ErrNotFound)
}

func (e *MissingPlayerError) Is(target error) bool {
	return target == ErrNotFound
}

// Ledger is the append-only game log. RecordGame and DeleteGame are atomic
// with respect to a game's participants.
type Ledger interface {
	CreatePlayer(ctx context.Context, name string) (models.Player, error)
	GetPlayer(ctx context.Context, id int64) (models.Player, error)
	ListPlayers(ctx context.Context) ([]models.Player, error)

	RecordGame(ctx context.Context, game models.NewGame) (models.GameRecord, error)
	DeleteGame(ctx context.Context, id int64) error
	GetGame(ctx context.Context, id int64) (models.GameRecord, error)
	QueryGames(ctx context.Context, q models.GameQuery) ([]models.GameRecord, error)
	GameParticipants(ctx context.Context, gameID int64) ([]models.Participant, error)
	SetGameAnalysis(ctx context.Context, id int64, analysis string) error

	Close() error
}
