package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avvvet/poker-ledger/internal/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cacheCollection = "insight_cache"

type cacheEntry struct {
	Key       string    `bson:"_id"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// MongoCache keeps generated text in a TTL-indexed collection.
type MongoCache struct {
	coll *mongo.Collection
	ttl  time.Duration
	now  func() time.Time
}

// NewMongoCache ensures the TTL index and returns the cache.
func NewMongoCache(ctx context.Context, database *mongo.Database, ttl time.Duration) (*MongoCache, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}
	if err := db.CreateTTLIndexForCollection(ctx, database, cacheCollection); err != nil {
		return nil, err
	}
	return &MongoCache{coll: database.Collection(cacheCollection), ttl: ttl, now: time.Now}, nil
}

func (c *MongoCache) Get(ctx context.Context, key string) (string, bool, error) {
	var entry cacheEntry
	// the TTL monitor runs about once a minute, so filter stale entries too
	filter := bson.M{"_id": key, "expires_at": bson.M{"$gt": c.now()}}
	err := c.coll.FindOne(ctx, filter).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find cache entry: %w", err)
	}
	return entry.Text, true, nil
}

func (c *MongoCache) Put(ctx context.Context, key, text string) error {
	now := c.now()
	entry := cacheEntry{Key: key, Text: text, CreatedAt: now, ExpiresAt: now.Add(c.ttl)}
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": key}, entry, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}
