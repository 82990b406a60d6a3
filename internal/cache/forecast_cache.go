// internal/cache/forecast_cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pantrytrack/backend/internal/config"
	"github.com/pantrytrack/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const rankingKey = "forecast:ranking"

// ForecastCache holds the most recent urgency ranking so repeated
// dashboard reads don't re-walk every product's snapshot history. Stock
// mutations invalidate it.
type ForecastCache interface {
	GetRanking(ctx context.Context) ([]*domain.Product, bool, error)
	SetRanking(ctx context.Context, products []*domain.Product) error
	Invalidate(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetRanking(ctx context.Context) ([]*domain.Product, bool, error) {
	payload, err := c.client.Get(ctx, rankingKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var products []*domain.Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, false, fmt.Errorf("decode ranking cache: %w", err)
	}

	return products, true, nil
}

func (c *redisForecastCache) SetRanking(ctx context.Context, products []*domain.Product) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode ranking cache: %w", err)
	}

	if err := c.client.Set(ctx, rankingKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, rankingKey).Err()
}

func (n *noopForecastCache) GetRanking(ctx context.Context) ([]*domain.Product, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetRanking(ctx context.Context, products []*domain.Product) error {
	return nil
}

func (n *noopForecastCache) Invalidate(ctx context.Context) error {
	return nil
}
