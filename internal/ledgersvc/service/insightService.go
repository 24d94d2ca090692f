package service

import (
	"context"

	"github.com/avvvet/poker-ledger/internal/insight"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/query"
	"github.com/avvvet/poker-ledger/internal/ledgersvc/stats"
)

type Analyzer interface {
	Enabled() bool
	Analyze(ctx context.Context, p insight.Prompt) insight.Analysis
}

type InsightService struct {
	stats     *StatsService
	analyzer  Analyzer
	maxTokens int
}

func NewInsightService(statsService *StatsService, analyzer Analyzer, maxTokens int) *InsightService {
	return &InsightService{stats: statsService, analyzer: analyzer, maxTokens: maxTokens}
}

type PlayerInsight struct {
	Stats        stats.PlayerStats `json:"stats"`
	Achievements []string          `json:"achievements"`
	Analysis     insight.Analysis  `json:"analysis"`
}

// PlayerInsight returns all-time stats and achievements, plus commentary
// when generation is enabled. Generation problems only show up in Analysis.
func (s *InsightService) PlayerInsight(ctx context.Context, id int64) (PlayerInsight, error) {
	ps, err := s.stats.PlayerStats(ctx, id, query.Filter{Scope: query.ScopeAll}, stats.ModeFull)
	if err != nil {
		return PlayerInsight{}, err
	}
	ach, err := s.stats.Achievements(ctx, id)
	if err != nil {
		return PlayerInsight{}, err
	}

	out := PlayerInsight{
		Stats:        ps,
		Achievements: ach.Unlocked,
		Analysis:     insight.Analysis{Status: insight.StatusDisabled},
	}
	if s.analyzer != nil && s.analyzer.Enabled() {
		out.Analysis = s.analyzer.Analyze(ctx, insight.PlayerPrompt(ps, ach.Unlocked, s.maxTokens))
	}
	return out, nil
}
