package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectGameRecord = `
		SELECT g.id, g.winner_id, g.pot_amount, g.winning_hand, g.ai_analysis, g.played_at, g.notes, p.name
		FROM games g
		JOIN players p ON p.id = g.winner_id`

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

func (s *GameStore) getByID(ctx context.Context, q querier, id int64) (models.GameRecord, error) {
	rec, err := scanGameRecord(q.QueryRow(ctx, selectGameRecord+` WHERE g.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GameRecord{}, fmt.Errorf("game %d: %w", id, store.ErrNotFound)
		}
		return models.GameRecord{}, fmt.Errorf("failed to get game by ID: %w", err)
	}
	return rec, nil
}

// Query returns games newest first. Participants are not attached.
func (s *GameStore) Query(ctx context.Context, gq models.GameQuery) ([]models.GameRecord, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if gq.From != nil {
		add("g.played_at >= $%d", gq.From.UTC())
	}
	if gq.To != nil {
		add("g.played_at < $%d", gq.To.UTC())
	}
	if gq.WinnerID > 0 {
		add("g.winner_id = $%d", gq.WinnerID)
	}
	if gq.Hand != "" {
		add("g.winning_hand = $%d", gq.Hand)
	}

	query := selectGameRecord
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY g.played_at DESC, g.id DESC"
	if gq.Limit > 0 {
		args = append(args, gq.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	defer rows.Close()

	games := []models.GameRecord{}
	for rows.Next() {
		rec, err := scanGameRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		games = append(games, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return games, nil
}

// insert fails with *store.MissingPlayerError when winner_id does not reference a player.
func (s *GameStore) insert(ctx context.Context, q querier, g models.NewGame) (int64, error) {
	playedAt := g.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}

	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO games (winner_id, pot_amount, winning_hand, played_at, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, g.WinnerID, g.PotAmount, g.WinningHand, playedAt.UTC(), g.Notes).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, &store.MissingPlayerError{ID: g.WinnerID}
		}
		return 0, fmt.Errorf("insert game: %w", err)
	}
	return id, nil
}

func (s *GameStore) delete(ctx context.Context, q querier, id int64) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete game %d: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

func (s *GameStore) SetAnalysis(ctx context.Context, id int64, analysis string) error {
	tag, err := s.db.Exec(ctx, `UPDATE games SET ai_analysis = $2 WHERE id = $1`, id, analysis)
	if err != nil {
		return fmt.Errorf("update analysis of game %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func scanGameRecord(row pgx.Row) (models.GameRecord, error) {
	var rec models.GameRecord
	err := row.Scan(
		&rec.ID,
		&rec.WinnerID,
		&rec.PotAmount,
		&rec.WinningHand,
		&rec.AIAnalysis,
		&rec.PlayedAt,
		&rec.Notes,
		&rec.WinnerName,
	)
	return rec, err
}
