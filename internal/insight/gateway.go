package insight

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const cachePutTimeout = 5 * time.Second

// Cache stores generated text by prompt key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, text string) error
}

// Gateway guards a Generator with a timeout and an optional cache.
type Gateway struct {
	gen     Generator
	cache   Cache
	timeout time.Duration
}

// NewGateway builds a gateway. A nil gen disables generation; a nil cache
// skips caching.
func NewGateway(gen Generator, cache Cache, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Gateway{gen: gen, cache: cache, timeout: timeout}
}

func (g *Gateway) Enabled() bool {
	return g != nil && g.gen != nil
}

// Analyze never fails: a disabled gateway reports StatusDisabled and any
// generation error is logged and reported as StatusFailed.
func (g *Gateway) Analyze(ctx context.Context, p Prompt) Analysis {
	if !g.Enabled() {
		return disabled()
	}

	key := CacheKey(p)
	if g.cache != nil {
		text, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			log.Warnf("insight cache get %s: %s", key[:12], err)
		} else if ok {
			return succeeded(text)
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.gen.Generate(genCtx, p)
	if err != nil {
		log.Errorf("insight generation failed: %s", err)
		return failed()
	}

	// the put gets its own budget so a slow generation still caches
	if g.cache != nil {
		putCtx, cancelPut := context.WithTimeout(ctx, cachePutTimeout)
		defer cancelPut()
		if err := g.cache.Put(putCtx, key, text); err != nil {
			log.Warnf("insight cache put %s: %s", key[:12], err)
		}
	}
	return succeeded(text)
}

// CacheKey is the hex SHA-256 of the prompt's fields.
func CacheKey(p Prompt) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d", p.SystemRole, p.Input, p.MaxTokens)
	return hex.EncodeToString(h.Sum(nil))
}
