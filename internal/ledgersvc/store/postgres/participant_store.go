package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ParticipantStore struct {
	db *pgxpool.Pool
}

func NewParticipantStore(db *pgxpool.Pool) *ParticipantStore {
	return &ParticipantStore{db: db}
}

func (s *ParticipantStore) GetByGameID(ctx context.Context, gameID int64) ([]models.Participant, error) {
	byGame, err := s.listByGameIDs(ctx, s.db, []int64{gameID})
	if err != nil {
		return nil, err
	}
	participants := byGame[gameID]
	if participants == nil {
		participants = []models.Participant{}
	}
	return participants, nil
}

// listByGameIDs loads the participants of many games in one statement.
func (s *ParticipantStore) listByGameIDs(ctx context.Context, q querier, gameIDs []int64) (map[int64][]models.Participant, error) {
	byGame := make(map[int64][]models.Participant, len(gameIDs))
	if len(gameIDs) == 0 {
		return byGame, nil
	}

	rows, err := q.Query(ctx, `
		SELECT gp.id, gp.game_id, gp.player_id, p.name, gp.bet_amount
		FROM game_participants gp
		JOIN players p ON p.id = gp.player_id
		WHERE gp.game_id = ANY($1)
		ORDER BY gp.game_id, gp.id
	`, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var gp models.Participant
		if err := rows.Scan(&gp.ID, &gp.GameID, &gp.PlayerID, &gp.PlayerName, &gp.BetAmount); err != nil {
			return nil, fmt.Errorf("scan participant row: %w", err)
		}
		byGame[gp.GameID] = append(byGame[gp.GameID], gp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return byGame, nil
}

// insert fails with *store.MissingPlayerError when player_id does not reference a player.
func (s *ParticipantStore) insert(ctx context.Context, q querier, gameID int64, np models.NewParticipant) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO game_participants (game_id, player_id, bet_amount)
		VALUES ($1, $2, $3)
		RETURNING id
	`, gameID, np.PlayerID, np.BetAmount).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, &store.MissingPlayerError{ID: np.PlayerID}
		}
		return 0, fmt.Errorf("insert participant for game %d: %w", gameID, err)
	}
	return id, nil
}

func (s *ParticipantStore) deleteByGameID(ctx context.Context, q querier, gameID int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM game_participants WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("delete participants of game %d: %w", gameID, err)
	}
	return nil
}
