package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trendpulse/internal/domain/sentiment"
	"trendpulse/internal/logging"
)

// Store is the subset of redis commands the cache needs
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cached memoizes classifications in redis. Redis failures degrade to a
// direct call.
type Cached struct {
	next      sentiment.Classifier
	store     Store
	namespace string
	ttl       time.Duration
	log       *zap.Logger
}

// NewCached wraps next. namespace separates models sharing one redis.
func NewCached(next sentiment.Classifier, store Store, namespace string, ttl time.Duration, log *zap.Logger) *Cached {
	return &Cached{
		next:      next,
		store:     store,
		namespace: namespace,
		ttl:       ttl,
		log:       logging.OrNop(log).With(zap.String("component", "classifier_cache")),
	}
}

func (c *Cached) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "sentiment:" + c.namespace + ":" + hex.EncodeToString(sum[:])
}

// Classify returns a cached classification or delegates and stores it
func (c *Cached) Classify(ctx context.Context, text string) (sentiment.Classification, error) {
	key := c.key(text)

	raw, err := c.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cl sentiment.Classification
		if jsonErr := json.Unmarshal(raw, &cl); jsonErr == nil {
			return cl, nil
		}
		c.log.Warn("Discarding undecodable cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("Classification cache read failed", zap.Error(err))
	}

	cl, err := c.next.Classify(ctx, text)
	if err != nil {
		return sentiment.Classification{}, err
	}

	data, err := json.Marshal(cl)
	if err == nil {
		err = c.store.Set(ctx, key, data, c.ttl).Err()
	}
	if err != nil {
		c.log.Warn("Classification cache write failed", zap.Error(err))
	}
	return cl, nil
}
