package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/avvvet/poker-ledger/internal/comm"
	"github.com/avvvet/poker-ledger/internal/insight"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/query"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/stats"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store/sqlite"
)

var fixedNow = time.Date(2026, time.July, 4, 20, 0, 0, 0, time.UTC)

type recordedEvent struct {
	kind   string
	gameID int64
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (f *fakePublisher) PublishGameEvent(_ context.Context, eventType string, g models.GameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{kind: eventType, gameID: g.ID})
	return f.err
}

type fakeAnalyzer struct {
	enabled bool
	text    string
	prompts []insight.Prompt
}

func (f *fakeAnalyzer) Enabled() bool { return f.enabled }

func (f *fakeAnalyzer) Analyze(_ context.Context, p insight.Prompt) insight.Analysis {
	f.prompts = append(f.prompts, p)
	text := f.text
	return insight.Analysis{Status: insight.StatusSucceeded, Text: &text}
}

type fixture struct {
	store   *sqlite.Store
	players *PlayerService
	games   *GameService
	stats   *StatsService
	pub     *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	pub := &fakePublisher{}
	games := NewGameService(s, pub, time.UTC)
	games.now = func() time.Time { return fixedNow }
	st := NewStatsService(s, time.UTC)
	st.now = func() time.Time { return fixedNow }
	return &fixture{store: s, players: NewPlayerService(s), games: games, stats: st, pub: pub}
}

func (f *fixture) player(t *testing.T, name string) models.Player {
	t.Helper()
	p, err := f.players.CreatePlayer(context.Background(), name)
	if err != nil {
		t.Fatalf("create player %s: %v", name, err)
	}
	return p
}

func (f *fixture) record(t *testing.T, req RecordGameRequest) models.GameRecord {
	t.Helper()
	g, err := f.games.RecordGame(context.Background(), req)
	if err != nil {
		t.Fatalf("record game: %v", err)
	}
	return g
}

func pot(v int64) *int64 { return &v }

func twoPlayerGame(winner, loser int64, potAmount, winnerBet, loserBet int64, hand string) RecordGameRequest {
	return RecordGameRequest{
		WinnerID:    winner,
		PotAmount:   pot(potAmount),
		WinningHand: hand,
		Participants: []ParticipantRequest{
			{PlayerID: winner, BetAmount: winnerBet},
			{PlayerID: loser, BetAmount: loserBet},
		},
	}
}

func TestCreatePlayerValidationAndConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ve *ValidationError
	if _, err := f.players.CreatePlayer(ctx, "   "); !errors.As(err, &ve) || ve.Field != "name" {
		t.Fatalf("err = %v, want name validation error", err)
	}

	p := f.player(t, "  Alice  ")
	if p.Name != "Alice" {
		t.Fatalf("name = %q, want trimmed", p.Name)
	}

	var ce *ConflictError
	if _, err := f.players.CreatePlayer(ctx, "Alice"); !errors.As(err, &ce) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
}

func TestCreatePlayerRaceHasOneWinner(t *testing.T) {
	f := newFixture(t)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.players.CreatePlayer(context.Background(), "Racer")
			var ce *ConflictError
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.As(err, &ce):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if ok != 1 || conflicts != 7 {
		t.Fatalf("created = %d, conflicts = %d", ok, conflicts)
	}
}

func TestRecordGameValidation(t *testing.T) {
	f := newFixture(t)
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")

	tests := []struct {
		name  string
		req   RecordGameRequest
		field string
	}{
		{"missing winner", RecordGameRequest{PotAmount: pot(1), Participants: []ParticipantRequest{{PlayerID: a.ID}, {PlayerID: b.ID}}}, "winner_id"},
		{"missing pot", RecordGameRequest{WinnerID: a.ID, Participants: []ParticipantRequest{{PlayerID: a.ID}, {PlayerID: b.ID}}}, "pot_amount"},
		{"one participant", RecordGameRequest{WinnerID: a.ID, PotAmount: pot(1), Participants: []ParticipantRequest{{PlayerID: a.ID}}}, "participants"},
		{"duplicate participant", RecordGameRequest{WinnerID: a.ID, PotAmount: pot(1), Participants: []ParticipantRequest{{PlayerID: a.ID}, {PlayerID: a.ID}}}, "participants[1].player_id"},
		{"zero participant", RecordGameRequest{WinnerID: a.ID, PotAmount: pot(1), Participants: []ParticipantRequest{{PlayerID: a.ID}, {PlayerID: 0}}}, "participants[1].player_id"},
		{"winner not playing", RecordGameRequest{WinnerID: a.ID, PotAmount: pot(1), Participants: []ParticipantRequest{{PlayerID: b.ID}, {PlayerID: 99}}}, "winner_id"},
		{"bad cards", RecordGameRequest{WinnerID: a.ID, PotAmount: pot(1), WinningCards: []string{"As", "Zz", "Qs", "Js", "Ts"}, Participants: []ParticipantRequest{{PlayerID: a.ID}, {PlayerID: b.ID}}}, "winning_cards"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.games.RecordGame(context.Background(), tt.req)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Fatalf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}

	games, err := f.store.QueryGames(context.Background(), models.GameQuery{})
	if err != nil {
		t.Fatalf("query games: %v", err)
	}
	if len(games) != 0 || len(f.pub.events) != 0 {
		t.Fatalf("validation failures wrote %d games and %d events", len(games), len(f.pub.events))
	}
}

func TestRecordGameUnknownPlayer(t *testing.T) {
	f := newFixture(t)
	a := f.player(t, "Alice")

	_, err := f.games.RecordGame(context.Background(), twoPlayerGame(a.ID, 77, 100, 50, 50, ""))
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Entity != "player" || nf.ID != 77 {
		t.Fatalf("err = %v, want player 77 not found", err)
	}
}

// vanishingLedger loses one player between the existence checks and the write.
type vanishingLedger struct {
	store.Ledger
	gone int64
}

func (l *vanishingLedger) RecordGame(context.Context, models.NewGame) (models.GameRecord, error) {
	return models.GameRecord{}, &store.MissingPlayerError{ID: l.gone}
}

func TestRecordGameNamesPlayerMissingAtWrite(t *testing.T) {
	f := newFixture(t)
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")

	games := NewGameService(&vanishingLedger{Ledger: f.store, gone: b.ID}, f.pub, time.UTC)
	games.now = func() time.Time { return fixedNow }

	_, err := games.RecordGame(context.Background(), twoPlayerGame(a.ID, b.ID, 100, 50, 50, ""))
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.ID != b.ID {
		t.Fatalf("err = %v, want player %d not found", err, b.ID)
	}
	if len(f.pub.events) != 0 {
		t.Fatalf("events = %+v, want none for a failed write", f.pub.events)
	}
}

func TestRecordGamePublishesAfterCommit(t *testing.T) {
	f := newFixture(t)
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")

	g := f.record(t, twoPlayerGame(a.ID, b.ID, 1000, 200, 300, models.HandRoyalFlush))
	if !g.PlayedAt.Equal(fixedNow) {
		t.Fatalf("played_at = %v, want service clock", g.PlayedAt)
	}
	if len(f.pub.events) != 1 || f.pub.events[0] != (recordedEvent{comm.EventGameRecorded, g.ID}) {
		t.Fatalf("events = %+v", f.pub.events)
	}
}

func TestRecordGameSurvivesPublishFailure(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("nats down")
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")

	g := f.record(t, twoPlayerGame(a.ID, b.ID, 10, 5, 5, ""))
	if _, err := f.games.GetGame(context.Background(), g.ID); err != nil {
		t.Fatalf("game lost after publish failure: %v", err)
	}
}

func TestRecordGameClassifiesCards(t *testing.T) {
	f := newFixture(t)
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")

	req := twoPlayerGame(a.ID, b.ID, 10, 5, 5, "")
	req.WinningCards = []string{"Kd", "Kh", "Ks", "3c", "3d"}
	g := f.record(t, req)
	if g.WinningHand != models.HandFullHouse {
		t.Fatalf("hand = %q, want %q", g.WinningHand, models.HandFullHouse)
	}

	// an explicit label wins over the cards and is kept verbatim
	req.WinningHand = "lucky river"
	g = f.record(t, req)
	if g.WinningHand != "lucky river" {
		t.Fatalf("hand = %q", g.WinningHand)
	}

	req.WinningCards = []string{"Kd", "Kd", "Ks", "3c", "3d"}
	var ve *ValidationError
	if _, err := f.games.RecordGame(context.Background(), req); !errors.As(err, &ve) || ve.Field != "winning_cards" {
		t.Fatalf("err = %v, want winning_cards validation error", err)
	}
}

func TestRecordGameRejectsFuturePlayedAt(t *testing.T) {
	f := newFixture(t)
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")

	req := twoPlayerGame(a.ID, b.ID, 10, 5, 5, "")
	future := fixedNow.Add(time.Hour)
	req.PlayedAt = &future
	var ve *ValidationError
	if _, err := f.games.RecordGame(context.Background(), req); !errors.As(err, &ve) || ve.Field != "played_at" {
		t.Fatalf("err = %v, want played_at validation error", err)
	}
}

func TestDeleteGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")
	g := f.record(t, twoPlayerGame(a.ID, b.ID, 1000, 200, 300, ""))

	if err := f.games.DeleteGame(ctx, g.ID); err != nil {
		t.Fatalf("delete game: %v", err)
	}
	var nf *NotFoundError
	if err := f.games.DeleteGame(ctx, g.ID); !errors.As(err, &nf) || nf.Entity != "game" {
		t.Fatalf("second delete err = %v, want game not found", err)
	}
	if last := f.pub.events[len(f.pub.events)-1]; last.kind != comm.EventGameDeleted || last.gameID != g.ID {
		t.Fatalf("last event = %+v", last)
	}

	s, err := f.stats.PlayerStats(ctx, a.ID, query.Filter{Scope: query.ScopeAll}, stats.ModeFull)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.TotalGames != 0 || s.TotalWon != 0 {
		t.Fatalf("deleted game still counted: %+v", s)
	}
}

func TestListGamesDefaultsToToday(t *testing.T) {
	f := newFixture(t)
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")

	yesterday := fixedNow.Add(-24 * time.Hour)
	old := twoPlayerGame(a.ID, b.ID, 10, 5, 5, "")
	old.PlayedAt = &yesterday
	f.record(t, old)
	today := f.record(t, twoPlayerGame(b.ID, a.ID, 20, 10, 10, models.HandFlush))

	games, err := f.games.ListGames(context.Background(), query.Filter{Scope: query.ScopeToday, Limit: 20})
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 1 || games[0].ID != today.ID || games[0].WinnerName != "Bob" {
		t.Fatalf("today = %+v", games)
	}

	games, err = f.games.ListGames(context.Background(), query.Filter{Scope: query.ScopeAll, PlayerID: a.ID, Limit: 20})
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	if len(games) != 1 || games[0].WinnerID != a.ID {
		t.Fatalf("won by alice = %+v", games)
	}
}

func TestPlayerStatsScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")
	f.record(t, twoPlayerGame(a.ID, b.ID, 1000, 200, 300, models.HandRoyalFlush))

	full, err := f.stats.PlayerStats(ctx, a.ID, query.Filter{Scope: query.ScopeAll}, stats.ModeFull)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if full.TotalWins != 1 || full.TotalWon != 1000 || full.TotalBet != 200 || full.Profit != 800 || full.Mode != stats.ModeFull {
		t.Fatalf("full = %+v", full)
	}

	simple, err := f.stats.PlayerStats(ctx, a.ID, query.Filter{Scope: query.ScopeAll}, stats.ModeSimplified)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if simple.TotalBet != 0 || simple.Profit != 1000 || simple.Mode != stats.ModeSimplified || simple.BetTracked {
		t.Fatalf("simplified = %+v", simple)
	}

	var nf *NotFoundError
	if _, err := f.stats.PlayerStats(ctx, 999, query.Filter{Scope: query.ScopeAll}, stats.ModeFull); !errors.As(err, &nf) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestPlayerStatsHandFilter(t *testing.T) {
	f := newFixture(t)
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")
	f.record(t, twoPlayerGame(a.ID, b.ID, 100, 50, 50, models.HandFlush))
	f.record(t, twoPlayerGame(b.ID, a.ID, 100, 50, 50, models.HandTwoPair))

	s, err := f.stats.PlayerStats(context.Background(), a.ID, query.Filter{Scope: query.ScopeAll, Hand: models.HandFlush}, stats.ModeFull)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.TotalGames != 1 || s.TotalWins != 1 || s.WinRate != 100 {
		t.Fatalf("flush-only stats = %+v", s)
	}
}

func TestLeaderboardAndRivalry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")
	f.player(t, "Carol")
	f.record(t, twoPlayerGame(b.ID, a.ID, 600, 300, 300, ""))

	board, err := f.stats.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 || board[0].Name != "Bob" || board[0].Profit != 300 || board[1].Profit != -300 {
		t.Fatalf("board = %+v", board)
	}

	r, err := f.stats.Rivalry(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("rivalry: %v", err)
	}
	if r.Player1.Name != "Alice" || r.Player2.TotalWon != 600 {
		t.Fatalf("rivalry = %+v", r)
	}

	var nf *NotFoundError
	if _, err := f.stats.Rivalry(ctx, a.ID, 404); !errors.As(err, &nf) || nf.ID != 404 {
		t.Fatalf("err = %v, want player 404 not found", err)
	}
	var ve *ValidationError
	if _, err := f.stats.Rivalry(ctx, a.ID, a.ID); !errors.As(err, &ve) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestAchievements(t *testing.T) {
	f := newFixture(t)
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")
	for i := 0; i < 10; i++ {
		f.record(t, twoPlayerGame(a.ID, b.ID, 5000, 100, 100, ""))
	}

	got, err := f.stats.Achievements(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("achievements: %v", err)
	}
	if len(got.Unlocked) != 2 || got.Unlocked[0] != "first_win" || got.Unlocked[1] != "veteran" {
		t.Fatalf("unlocked = %v", got.Unlocked)
	}
	if len(got.Achievements) != 2 {
		t.Fatalf("achievements = %+v", got.Achievements)
	}
}

func TestHandCountsEmptyToday(t *testing.T) {
	f := newFixture(t)
	counts, err := f.stats.HandCounts(context.Background(), query.Filter{Scope: query.ScopeToday})
	if err != nil {
		t.Fatalf("hand counts: %v", err)
	}
	if counts == nil || len(counts) != 0 {
		t.Fatalf("counts = %#v, want empty", counts)
	}
}

func TestPlayerInsight(t *testing.T) {
	f := newFixture(t)
	a := f.player(t, "Alice")
	b := f.player(t, "Bob")
	f.record(t, twoPlayerGame(a.ID, b.ID, 100, 50, 50, ""))

	disabled := NewInsightService(f.stats, &fakeAnalyzer{}, 100)
	got, err := disabled.PlayerInsight(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("insight: %v", err)
	}
	if got.Analysis.Status != insight.StatusDisabled || got.Analysis.Text != nil {
		t.Fatalf("analysis = %+v", got.Analysis)
	}
	if got.Stats.TotalWins != 1 || len(got.Achievements) != 1 {
		t.Fatalf("insight = %+v", got)
	}

	analyzer := &fakeAnalyzer{enabled: true, text: "Alice is on fire."}
	enabled := NewInsightService(f.stats, analyzer, 100)
	got, err = enabled.PlayerInsight(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("insight: %v", err)
	}
	if got.Analysis.Text == nil || *got.Analysis.Text != "Alice is on fire." {
		t.Fatalf("analysis = %+v", got.Analysis)
	}
	if len(analyzer.prompts) != 1 || analyzer.prompts[0].MaxTokens != 100 {
		t.Fatalf("prompts = %+v", analyzer.prompts)
	}

	var nf *NotFoundError
	if _, err := enabled.PlayerInsight(context.Background(), 404); !errors.As(err, &nf) {
		t.Fatalf("err = %v, want not found", err)
	}
}
