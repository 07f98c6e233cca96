package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"notevault-be/internal/pkg/logger"
	"notevault-be/internal/pkg/metrics"

	"github.com/google/uuid"
)

const keyPrefix = "cache"

// Coordinator owns the per-user response cache namespace
// "cache:<userId>:<request uri>".
type Coordinator struct {
	store   Store
	ttl     time.Duration
	logger  logger.ILogger
	metrics *metrics.Metrics
}

func NewCoordinator(store Store, ttl time.Duration, log logger.ILogger, m *metrics.Metrics) *Coordinator {
	return &Coordinator{store: store, ttl: ttl, logger: log, metrics: m}
}

func Namespace(userId uuid.UUID) string {
	return fmt.Sprintf("%s:%s:", keyPrefix, userId)
}

func Key(userId uuid.UUID, requestURI string) string {
	return Namespace(userId) + requestURI
}

// Remember returns the cached value for (userId, requestURI) or runs compute,
// stores its result and returns it. Cache failures degrade to compute.
func Remember[T any](ctx context.Context, c *Coordinator, userId uuid.UUID, requestURI string, compute func() (T, error)) (T, error) {
	key := Key(userId, requestURI)

	if raw, found, err := c.store.Get(ctx, key); err != nil {
		c.count("error")
		c.logger.Warn("Cache", "Cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	} else if found {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			c.count("hit")
			return cached, nil
		}
	}
	c.count("miss")

	value, err := compute()
	if err != nil {
		return value, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Cache", "Cache encode failed", map[string]interface{}{"key": key, "error": err.Error()})
		return value, nil
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("Cache", "Cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return value, nil
}

// Invalidate drops every cached response of each distinct user. Errors are
// logged; the mutation that triggered the call has already committed.
func (c *Coordinator) Invalidate(ctx context.Context, userIds ...uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, len(userIds))
	for _, id := range userIds {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		n, err := c.store.DeleteByPrefix(ctx, Namespace(id))
		if err != nil {
			c.logger.Warn("Cache", "Cache invalidation failed", map[string]interface{}{"user_id": id, "error": err.Error()})
			continue
		}
		if c.metrics != nil {
			c.metrics.CacheInvalidations.Inc()
		}
		c.logger.Debug("Cache", "Cache invalidated", map[string]interface{}{"user_id": id, "keys": n})
	}
}

func (c *Coordinator) count(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
