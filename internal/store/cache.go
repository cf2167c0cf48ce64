package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/common/metrics"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
)

const cacheKeyPrefix = "kwintel:intent"

// CachedStore is a Redis read-through, write-through cache in front of
// another Store. Redis failures are logged and the wrapped store answers.
type CachedStore struct {
	next   intent.Store
	rdb    redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(next intent.Store, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{next: next, rdb: rdb, ttl: ttl, logger: log}
}

func CacheKey(scope, keyword string) string {
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, scope, keyword)
}

func (s *CachedStore) Get(ctx context.Context, scope, keyword string) (*models.IntentClassification, error) {
	key := CacheKey(scope, keyword)

	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var c models.IntentClassification
		if jsonErr := json.Unmarshal(raw, &c); jsonErr == nil {
			metrics.ClassificationCacheLookups.WithLabelValues("hit").Inc()
			return &c, nil
		}
		s.logger.Warn("Discarding undecodable cache entry", map[string]interface{}{"key": key})
		metrics.ClassificationCacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.ClassificationCacheLookups.WithLabelValues("miss").Inc()
	default:
		s.logger.Warn("Classification cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		metrics.ClassificationCacheLookups.WithLabelValues("error").Inc()
	}

	c, err := s.next.Get(ctx, scope, keyword)
	if err != nil || c == nil {
		return c, err
	}
	s.put(ctx, c)
	return c, nil
}

func (s *CachedStore) GetByID(ctx context.Context, id string) (*models.IntentClassification, error) {
	return s.next.GetByID(ctx, id)
}

func (s *CachedStore) Save(ctx context.Context, c *models.IntentClassification) (*models.IntentClassification, error) {
	saved, err := s.next.Save(ctx, c)
	if err != nil {
		return nil, err
	}
	s.put(ctx, saved)
	return saved, nil
}

func (s *CachedStore) Query(ctx context.Context, scope string, f intent.Filter) ([]*models.IntentClassification, error) {
	return s.next.Query(ctx, scope, f)
}

func (s *CachedStore) put(ctx context.Context, c *models.IntentClassification) {
	key := CacheKey(c.ProjectID, c.Keyword)
	raw, err := json.Marshal(c)
	if err != nil {
		s.logger.Warn("Classification not cacheable", map[string]interface{}{"key": key, "error": err.Error()})
		return
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("Classification cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
