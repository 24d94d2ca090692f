package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avvvet/poker-ledger/internal/comm"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/hands"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/query"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store"
	log "github.com/sirupsen/logrus"
)

// Publisher announces committed ledger changes.
type Publisher interface {
	PublishGameEvent(ctx context.Context, eventType string, g models.GameRecord) error
}

type RecordGameRequest struct {
	WinnerID     int64                `json:"winner_id"`
	PotAmount    *int64               `json:"pot_amount"`
	WinningHand  string               `json:"winning_hand"`
	WinningCards []string             `json:"winning_cards"`
	Notes        string               `json:"notes"`
	PlayedAt     *time.Time           `json:"played_at"`
	Participants []ParticipantRequest `json:"participants"`
}

type ParticipantRequest struct {
	PlayerID  int64 `json:"player_id"`
	BetAmount int64 `json:"bet_amount"`
}

type GameService struct {
	ledger    store.Ledger
	publisher Publisher
	now       func() time.Time
	loc       *time.Location
}

// NewGameService wires the ledger and an optional publisher. A nil publisher
// disables events.
func NewGameService(ledger store.Ledger, publisher Publisher, loc *time.Location) *GameService {
	if loc == nil {
		loc = time.Local
	}
	return &GameService{ledger: ledger, publisher: publisher, now: time.Now, loc: loc}
}

// RecordGame validates the hand, writes it in one transaction and then
// publishes game-recorded. Publishing failures never undo the write.
func (s *GameService) RecordGame(ctx context.Context, req RecordGameRequest) (models.GameRecord, error) {
	ng, err := s.validate(req)
	if err != nil {
		return models.GameRecord{}, err
	}

	if _, err := getPlayer(ctx, s.ledger, ng.WinnerID); err != nil {
		return models.GameRecord{}, err
	}
	for _, p := range ng.Participants {
		if _, err := getPlayer(ctx, s.ledger, p.PlayerID); err != nil {
			return models.GameRecord{}, err
		}
	}

	rec, err := s.ledger.RecordGame(ctx, ng)
	if err != nil {
		// a player removed between the checks and the write
		var missing *store.MissingPlayerError
		if errors.As(err, &missing) {
			return models.GameRecord{}, &NotFoundError{Entity: "player", ID: missing.ID}
		}
		return models.GameRecord{}, fmt.Errorf("failed to record game: %w", err)
	}
	log.Infof("game %d recorded, winner %d pot %d", rec.ID, rec.WinnerID, rec.PotAmount)

	s.publish(ctx, comm.EventGameRecorded, rec)
	return rec, nil
}

func (s *GameService) validate(req RecordGameRequest) (models.NewGame, error) {
	if req.WinnerID <= 0 {
		return models.NewGame{}, invalid("winner_id", "is required")
	}
	if req.PotAmount == nil {
		return models.NewGame{}, invalid("pot_amount", "is required")
	}
	if len(req.Participants) < 2 {
		return models.NewGame{}, invalid("participants", "at least 2 participants are required")
	}

	seen := make(map[int64]bool, len(req.Participants))
	winnerPlayed := false
	ps := make([]models.NewParticipant, 0, len(req.Participants))
	for i, p := range req.Participants {
		if p.PlayerID <= 0 {
			return models.NewGame{}, invalid(fmt.Sprintf("participants[%d].player_id", i), "is required")
		}
		if seen[p.PlayerID] {
			return models.NewGame{}, invalid(fmt.Sprintf("participants[%d].player_id", i), "player %d is listed twice", p.PlayerID)
		}
		seen[p.PlayerID] = true
		if p.PlayerID == req.WinnerID {
			winnerPlayed = true
		}
		ps = append(ps, models.NewParticipant{PlayerID: p.PlayerID, BetAmount: p.BetAmount})
	}
	if !winnerPlayed {
		return models.NewGame{}, invalid("winner_id", "winner must be one of the participants")
	}

	// an explicit label wins; cards are still checked when both are sent
	hand := req.WinningHand
	if len(req.WinningCards) > 0 {
		label, err := hands.Classify(req.WinningCards)
		if err != nil {
			return models.NewGame{}, invalid("winning_cards", "%s", err)
		}
		if hand == "" {
			hand = label
		}
	}

	ng := models.NewGame{
		WinnerID:     req.WinnerID,
		PotAmount:    *req.PotAmount,
		WinningHand:  hand,
		Notes:        req.Notes,
		PlayedAt:     s.now(),
		Participants: ps,
	}
	if req.PlayedAt != nil {
		if req.PlayedAt.After(s.now().Add(time.Minute)) {
			return models.NewGame{}, invalid("played_at", "must not be in the future")
		}
		ng.PlayedAt = *req.PlayedAt
	}
	return ng, nil
}

// DeleteGame removes the game and its participants together.
func (s *GameService) DeleteGame(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalid("id", "must be a positive integer")
	}
	rec, err := s.GetGame(ctx, id)
	if err != nil {
		return err
	}

	err = s.ledger.DeleteGame(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Entity: "game", ID: id}
	}
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	log.Infof("game %d deleted", id)

	s.publish(ctx, comm.EventGameDeleted, rec)
	return nil
}

func (s *GameService) GetGame(ctx context.Context, id int64) (models.GameRecord, error) {
	if id <= 0 {
		return models.GameRecord{}, invalid("id", "must be a positive integer")
	}
	rec, err := s.ledger.GetGame(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.GameRecord{}, &NotFoundError{Entity: "game", ID: id}
	}
	if err != nil {
		return models.GameRecord{}, err
	}
	return rec, nil
}

// ListGames returns the newest games matching f.
func (s *GameService) ListGames(ctx context.Context, f query.Filter) ([]models.GameRecord, error) {
	return s.ledger.QueryGames(ctx, f.Query(s.now().In(s.loc)))
}

func (s *GameService) publish(ctx context.Context, eventType string, rec models.GameRecord) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishGameEvent(ctx, eventType, rec); err != nil {
		log.Warnf("publish %s for game %d: %s", eventType, rec.ID, err)
	}
}
