// Package postgres is the PostgreSQL ledger backend built on pgx/v5.
package postgres

import (
	"context"
	"fmt"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ledger composes the table stores and owns the transactions that span them.
type Ledger struct {
	db           *pgxpool.Pool
	players      *PlayerStore
	games        *GameStore
	participants *ParticipantStore
}

func NewLedger(db *pgxpool.Pool) *Ledger {
	return &Ledger{
		db:           db,
		players:      NewPlayerStore(db),
		games:        NewGameStore(db),
		participants: NewParticipantStore(db),
	}
}

func (l *Ledger) CreatePlayer(ctx context.Context, name string) (models.Player, error) {
	return l.players.CreatePlayer(ctx, name)
}

func (l *Ledger) GetPlayer(ctx context.Context, id int64) (models.Player, error) {
	return l.players.GetByID(ctx, id)
}

func (l *Ledger) ListPlayers(ctx context.Context) ([]models.Player, error) {
	return l.players.List(ctx)
}

// RecordGame inserts the game and all its participants in one transaction.
func (l *Ledger) RecordGame(ctx context.Context, g models.NewGame) (models.GameRecord, error) {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	id, err := l.games.insert(ctx, tx, g)
	if err != nil {
		return models.GameRecord{}, err
	}
	for _, np := range g.Participants {
		if _, err := l.participants.insert(ctx, tx, id, np); err != nil {
			return models.GameRecord{}, err
		}
	}

	rec, err := l.games.getByID(ctx, tx, id)
	if err != nil {
		return models.GameRecord{}, err
	}
	byGame, err := l.participants.listByGameIDs(ctx, tx, []int64{id})
	if err != nil {
		return models.GameRecord{}, err
	}
	rec.Participants = byGame[id]

	if err := tx.Commit(ctx); err != nil {
		return models.GameRecord{}, fmt.Errorf("commit tx: %w", err)
	}
	return rec, nil
}

// DeleteGame removes the participants and then the game in one transaction.
func (l *Ledger) DeleteGame(ctx context.Context, id int64) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := l.participants.deleteByGameID(ctx, tx, id); err != nil {
		return err
	}
	affected, err := l.games.delete(ctx, tx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("game %d: %w", id, store.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (l *Ledger) GetGame(ctx context.Context, id int64) (models.GameRecord, error) {
	rec, err := l.games.getByID(ctx, l.db, id)
	if err != nil {
		return models.GameRecord{}, err
	}
	rec.Participants, err = l.participants.GetByGameID(ctx, id)
	if err != nil {
		return models.GameRecord{}, err
	}
	return rec, nil
}

// QueryGames runs two statements regardless of how many games match.
func (l *Ledger) QueryGames(ctx context.Context, q models.GameQuery) ([]models.GameRecord, error) {
	games, err := l.games.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(games))
	for i := range games {
		ids[i] = games[i].ID
	}
	byGame, err := l.participants.listByGameIDs(ctx, l.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range games {
		games[i].Participants = byGame[games[i].ID]
		if games[i].Participants == nil {
			games[i].Participants = []models.Participant{}
		}
	}
	return games, nil
}

func (l *Ledger) GameParticipants(ctx context.Context, gameID int64) ([]models.Participant, error) {
	return l.participants.GetByGameID(ctx, gameID)
}

func (l *Ledger) SetGameAnalysis(ctx context.Context, id int64, analysis string) error {
	return l.games.SetAnalysis(ctx, id, analysis)
}

// Close releases the pool.
func (l *Ledger) Close() error {
	l.db.Close()
	return nil
}

var _ store.Ledger = (*Ledger)(nil)
