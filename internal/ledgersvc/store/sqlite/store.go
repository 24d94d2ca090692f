// Package sqlite provides a SQLite-backed ledger built on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const selectGameRecord = `
		SELECT g.id, g.winner_id, g.pot_amount, g.winning_hand, g.ai_analysis, g.played_at, g.notes, p.name
		FROM games g
		JOIN players p ON p.id = g.winner_id`

// Store persists the ledger in a single SQLite file.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite ledger and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one connection serialises writers; every query drains its rows
	// before the next statement runs
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := Migrate(context.Background(), sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) CreatePlayer(ctx context.Context, name string) (models.Player, error) {
	if err := ctx.Err(); err != nil {
		return models.Player{}, err
	}
	createdAt := s.now().UTC()
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO players (name, created_at) VALUES (?, ?)`,
		name, toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Player{}, fmt.Errorf("player %q: %w", name, store.ErrAlreadyExists)
		}
		return models.Player{}, fmt.Errorf("could not create player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Player{}, fmt.Errorf("player id: %w", err)
	}
	return models.Player{ID: id, Name: name, CreatedAt: fromMillis(toMillis(createdAt))}, nil
}

func (s *Store) GetPlayer(ctx context.Context, id int64) (models.Player, error) {
	var (
		p         models.Player
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM players WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Player{}, fmt.Errorf("player %d: %w", id, store.ErrNotFound)
		}
		return models.Player{}, fmt.Errorf("failed to get player by ID: %w", err)
	}
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}

func (s *Store) ListPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, name, created_at FROM players ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		var (
			p         models.Player
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan player row: %w", err)
		}
		p.CreatedAt = fromMillis(createdAt)
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// RecordGame inserts the game and all its participants in one transaction.
func (s *Store) RecordGame(ctx context.Context, g models.NewGame) (models.GameRecord, error) {
	playedAt := g.PlayedAt
	if playedAt.IsZero() {
		playedAt = s.now()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := playerExists(ctx, tx, g.WinnerID); err != nil {
		return models.GameRecord{}, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO games (winner_id, pot_amount, winning_hand, played_at, notes) VALUES (?, ?, ?, ?, ?)`,
		g.WinnerID, g.PotAmount, g.WinningHand, toMillis(playedAt), g.Notes,
	)
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("insert game: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.GameRecord{}, fmt.Errorf("game id: %w", err)
	}

	for _, np := range g.Participants {
		if err := playerExists(ctx, tx, np.PlayerID); err != nil {
			return models.GameRecord{}, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_participants (game_id, player_id, bet_amount) VALUES (?, ?, ?)`,
			id, np.PlayerID, np.BetAmount,
		); err != nil {
			return models.GameRecord{}, fmt.Errorf("insert participant for game %d: %w", id, err)
		}
	}

	rec, err := getGame(ctx, tx, id)
	if err != nil {
		return models.GameRecord{}, err
	}
	byGame, err := participantsOf(ctx, tx, []int64{id})
	if err != nil {
		return models.GameRecord{}, err
	}
	rec.Participants = byGame[id]

	if err := tx.Commit(); err != nil {
		return models.GameRecord{}, fmt.Errorf("commit tx: %w", err)
	}
	return rec, nil
}

// DeleteGame removes the participants and then the game in one transaction.
func (s *Store) DeleteGame(ctx context.Context, id int64) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM game_participants WHERE game_id = ?`, id); err != nil {
		return fmt.Errorf("delete participants of game %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete game %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete game %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("game %d: %w", id, store.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) GetGame(ctx context.Context, id int64) (models.GameRecord, error) {
	rec, err := getGame(ctx, s.sqlDB, id)
	if err != nil {
		return models.GameRecord{}, err
	}
	byGame, err := participantsOf(ctx, s.sqlDB, []int64{id})
	if err != nil {
		return models.GameRecord{}, err
	}
	rec.Participants = nonNil(byGame[id])
	return rec, nil
}

// QueryGames returns games newest first with participants attached, using
// two statements regardless of how many games match.
func (s *Store) QueryGames(ctx context.Context, gq models.GameQuery) ([]models.GameRecord, error) {
	var (
		where []string
		args  []any
	)
	if gq.From != nil {
		where = append(where, "g.played_at >= ?")
		args = append(args, toMillis(*gq.From))
	}
	if gq.To != nil {
		where = append(where, "g.played_at < ?")
		args = append(args, toMillis(*gq.To))
	}
	if gq.WinnerID > 0 {
		where = append(where, "g.winner_id = ?")
		args = append(args, gq.WinnerID)
	}
	if gq.Hand != "" {
		where = append(where, "g.winning_hand = ?")
		args = append(args, gq.Hand)
	}

	query := selectGameRecord
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY g.played_at DESC, g.id DESC"
	if gq.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, gq.Limit)
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	games := []models.GameRecord{}
	for rows.Next() {
		rec, err := scanGameRecord(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		games = append(games, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("select games: %w", err)
	}
	rows.Close()

	ids := make([]int64, len(games))
	for i := range games {
		ids[i] = games[i].ID
	}
	byGame, err := participantsOf(ctx, s.sqlDB, ids)
	if err != nil {
		return nil, err
	}
	for i := range games {
		games[i].Participants = nonNil(byGame[games[i].ID])
	}
	return games, nil
}

func (s *Store) GameParticipants(ctx context.Context, gameID int64) ([]models.Participant, error) {
	byGame, err := participantsOf(ctx, s.sqlDB, []int64{gameID})
	if err != nil {
		return nil, err
	}
	return nonNil(byGame[gameID]), nil
}

func (s *Store) SetGameAnalysis(ctx context.Context, id int64, analysis string) error {
	res, err := s.sqlDB.ExecContext(ctx, `UPDATE games SET ai_analysis = ? WHERE id = ?`, analysis, id)
	if err != nil {
		return fmt.Errorf("update analysis of game %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update analysis of game %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("game %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func playerExists(ctx context.Context, q queryer, id int64) error {
	var found int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM players WHERE id = ?`, id).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &store.MissingPlayerError{ID: id}
		}
		return fmt.Errorf("check player %d: %w", id, err)
	}
	return nil
}

func getGame(ctx context.Context, q queryer, id int64) (models.GameRecord, error) {
	rec, err := scanGameRecord(q.QueryRowContext(ctx, selectGameRecord+` WHERE g.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.GameRecord{}, fmt.Errorf("game %d: %w", id, store.ErrNotFound)
		}
		return models.GameRecord{}, fmt.Errorf("failed to get game by ID: %w", err)
	}
	return rec, nil
}

func participantsOf(ctx context.Context, q queryer, gameIDs []int64) (map[int64][]models.Participant, error) {
	byGame := make(map[int64][]models.Participant, len(gameIDs))
	if len(gameIDs) == 0 {
		return byGame, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(gameIDs)), ",")
	args := make([]any, len(gameIDs))
	for i, id := range gameIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, `
		SELECT gp.id, gp.game_id, gp.player_id, p.name, gp.bet_amount
		FROM game_participants gp
		JOIN players p ON p.id = gp.player_id
		WHERE gp.game_id IN (`+placeholders+`)
		ORDER BY gp.game_id, gp.id`, args...)
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
		return nil, fmt.Errorf("select participants: %w", err)
	}
	return byGame, nil
}

func scanGameRecord(row scanner) (models.GameRecord, error) {
	var (
		rec      models.GameRecord
		analysis sql.NullString
		playedAt int64
	)
	err := row.Scan(
		&rec.ID,
		&rec.WinnerID,
		&rec.PotAmount,
		&rec.WinningHand,
		&analysis,
		&playedAt,
		&rec.Notes,
		&rec.WinnerName,
	)
	if err != nil {
		return models.GameRecord{}, err
	}
	if analysis.Valid {
		text := analysis.String
		rec.AIAnalysis = &text
	}
	rec.PlayedAt = fromMillis(playedAt)
	return rec, nil
}

func nonNil(participants []models.Participant) []models.Participant {
	if participants == nil {
		return []models.Participant{}
	}
	return participants
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ store.Ledger = (*Store)(nil)
