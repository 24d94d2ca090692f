package insight

import (
	"context"

	config "github.com/avvvet/poker-ledger/configs"
	"github.com/avvvet/poker-ledger/internal/db"
	log "github.com/sirupsen/logrus"
)

// FromSettings builds the gateway described by s. Without OPENAI_API_KEY the
// gateway is disabled. The Mongo cache is attached only when MONGODB_URI is
// set and reachable; otherwise generation runs uncached. The returned func
// releases the cache connection.
func FromSettings(ctx context.Context, s config.Settings) (*Gateway, func()) {
	gen := NewOpenAIGenerator(OpenAIConfig{
		APIKey:       s.OpenAIKey,
		Model:        s.OpenAIModel,
		ResponsesURL: s.OpenAIURL,
	})
	if gen == nil {
		log.Info("OPENAI_API_KEY not set, insight generation disabled")
		return NewGateway(nil, nil, s.InsightTimeout), func() {}
	}

	if s.MongoURI == "" {
		return NewGateway(gen, nil, s.InsightTimeout), func() {}
	}

	database, err := db.ConnectToDB(ctx, s.MongoURI)
	if err != nil {
		log.Warnf("insight cache unavailable: %s", err)
		return NewGateway(gen, nil, s.InsightTimeout), func() {}
	}
	cache, err := NewMongoCache(ctx, database, s.InsightCacheTTL)
	if err != nil {
		log.Warnf("insight cache unavailable: %s", err)
		_ = database.Client().Disconnect(context.Background())
		return NewGateway(gen, nil, s.InsightTimeout), func() {}
	}
	log.Infof("insight cache connected, ttl %s", s.InsightCacheTTL)

	return NewGateway(gen, cache, s.InsightTimeout), func() {
		_ = database.Client().Disconnect(context.Background())
	}
}
