package service

import (
	"context"
	"fmt"
	"time"

	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/query"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/stats"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store"
)

// StatsService reads ledger snapshots and hands them to the stats engine.
// Every method issues a fixed number of store queries, independent of the
// number of players.
type StatsService struct {
	ledger store.Ledger
	now    func() time.Time
	loc    *time.Location
}

func NewStatsService(ledger store.Ledger, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{ledger: ledger, now: time.Now, loc: loc}
}

type PlayerAchievements struct {
	PlayerID     int64               `json:"id"`
	Name         string              `json:"name"`
	Unlocked     []string            `json:"unlocked"`
	Achievements []stats.Achievement `json:"achievements"`
}

// PlayerStats aggregates the player's games within f's scope and hand.
// f.PlayerID and f.Limit are ignored: the player is the subject.
func (s *StatsService) PlayerStats(ctx context.Context, id int64, f query.Filter, mode stats.Mode) (stats.PlayerStats, error) {
	p, err := getPlayer(ctx, s.ledger, id)
	if err != nil {
		return stats.PlayerStats{}, err
	}
	q := f.Query(s.clock())
	q.WinnerID, q.Limit = 0, 0

	totals, err := s.tally(ctx, q)
	if err != nil {
		return stats.PlayerStats{}, err
	}
	return stats.Aggregate(p, totals[p.ID], mode), nil
}

// Achievements are judged on all-time counters.
func (s *StatsService) Achievements(ctx context.Context, id int64) (PlayerAchievements, error) {
	p, err := getPlayer(ctx, s.ledger, id)
	if err != nil {
		return PlayerAchievements{}, err
	}
	totals, err := s.tally(ctx, models.GameQuery{})
	if err != nil {
		return PlayerAchievements{}, err
	}
	ids := stats.EvaluateAchievements(totals[p.ID].Counters())
	return PlayerAchievements{
		PlayerID:     p.ID,
		Name:         p.Name,
		Unlocked:     ids,
		Achievements: stats.Unlocked(ids),
	}, nil
}

// Leaderboard ranks every active player on all-time results.
func (s *StatsService) Leaderboard(ctx context.Context) ([]stats.LeaderboardEntry, error) {
	players, err := s.ledger.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	totals, err := s.tally(ctx, models.GameQuery{})
	if err != nil {
		return nil, err
	}
	return stats.Leaderboard(players, totals), nil
}

// Rivalry compares two distinct players' all-time wins and winnings.
func (s *StatsService) Rivalry(ctx context.Context, a, b int64) (stats.Rivalry, error) {
	if a <= 0 {
		return stats.Rivalry{}, invalid("player1", "must be a positive integer")
	}
	if b <= 0 {
		return stats.Rivalry{}, invalid("player2", "must be a positive integer")
	}
	if a == b {
		return stats.Rivalry{}, invalid("player2", "must differ from player1")
	}
	pa, err := getPlayer(ctx, s.ledger, a)
	if err != nil {
		return stats.Rivalry{}, err
	}
	pb, err := getPlayer(ctx, s.ledger, b)
	if err != nil {
		return stats.Rivalry{}, err
	}
	totals, err := s.tally(ctx, models.GameQuery{})
	if err != nil {
		return stats.Rivalry{}, err
	}
	return stats.Compare(pa, pb, totals), nil
}

// HandCounts counts wins per hand label within f, without a row limit.
func (s *StatsService) HandCounts(ctx context.Context, f query.Filter) ([]stats.HandCount, error) {
	q := f.Query(s.clock())
	q.Limit = 0
	games, err := s.ledger.QueryGames(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	return stats.HandCounts(games), nil
}

func (s *StatsService) tally(ctx context.Context, q models.GameQuery) (map[int64]*stats.Totals, error) {
	games, err := s.ledger.QueryGames(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	return stats.Tally(games), nil
}

func (s *StatsService) clock() time.Time {
	return s.now().In(s.loc)
}
