package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerStore struct {
	db *pgxpool.Pool
}

func NewPlayerStore(db *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{db: db}
}

// CreatePlayer fails with store.ErrAlreadyExists when the name is taken
// (unique_player_name constraint).
func (r *PlayerStore) CreatePlayer(ctx context.Context, name string) (models.Player, error) {
	query := `
        INSERT INTO players (name)
        VALUES ($1)
        RETURNING id, name, created_at;
    `

	var p models.Player
	err := r.db.QueryRow(ctx, query, name).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.Player{}, fmt.Errorf("player %q: %w", name, store.ErrAlreadyExists)
		}
		return models.Player{}, fmt.Errorf("could not create player: %w", err)
	}

	return p, nil
}

func (r *PlayerStore) GetByID(ctx context.Context, id int64) (models.Player, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, name, created_at
        FROM players
        WHERE id = $1
    `, id)

	var p models.Player
	err := row.Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Player{}, fmt.Errorf("player %d: %w", id, store.ErrNotFound)
		}
		return models.Player{}, fmt.Errorf("failed to get player by ID: %w", err)
	}

	return p, nil
}

// List returns every player ordered by name, byte-wise so both backends agree.
func (r *PlayerStore) List(ctx context.Context) ([]models.Player, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name, created_at
        FROM players
        ORDER BY name COLLATE "C", id
    `)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return players, nil
}
