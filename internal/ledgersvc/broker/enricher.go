package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/avvvet/poker-ledger/internal/comm"
	"github.com/avvvet/poker-ledger/internal/insight"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/models"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/store"
	log "github.com/sirupsen/logrus"
)

type GameAnnotator interface {
	GetGame(ctx context.Context, id int64) (models.GameRecord, error)
	SetGameAnalysis(ctx context.Context, id int64, analysis string) error
}

type Analyzer interface {
	Analyze(ctx context.Context, p insight.Prompt) insight.Analysis
}

// Enricher attaches generated commentary to games after they are recorded.
type Enricher struct {
	Ledger    GameAnnotator
	Gateway   Analyzer
	MaxTokens int
}

// HandleMessage processes one ledger event. Events other than
// game-recorded are ignored, as are games deleted before they were enriched.
func (e *Enricher) HandleMessage(ctx context.Context, data []byte) error {
	var msg comm.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode ledger event: %w", err)
	}
	if msg.Type != comm.EventGameRecorded {
		return nil
	}

	var ev comm.GameEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return fmt.Errorf("decode game event %s: %w", msg.ID, err)
	}

	game, err := e.Ledger.GetGame(ctx, ev.GameID)
	if errors.Is(err, store.ErrNotFound) {
		log.Infof("game %d gone before enrichment", ev.GameID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load game %d: %w", ev.GameID, err)
	}
	if game.AIAnalysis != nil {
		return nil
	}

	analysis := e.Gateway.Analyze(ctx, insight.GamePrompt(game, e.MaxTokens))
	if analysis.Status != insight.StatusSucceeded || analysis.Text == nil {
		log.Infof("game %d left without analysis: %s", ev.GameID, analysis.Status)
		return nil
	}

	err = e.Ledger.SetGameAnalysis(ctx, ev.GameID, *analysis.Text)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store analysis for game %d: %w", ev.GameID, err)
	}
	log.Infof("game %d enriched", ev.GameID)
	return nil
}
