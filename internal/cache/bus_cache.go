// Package cache holds Redis-backed read caches for the gallery API.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"busgallery/internal/model"
)

const busesKey = "busgallery:buses"

// BusCache stores the bus picker list as one JSON value.
type BusCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewBusCache(client *redisv9.Client, ttl time.Duration) *BusCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &BusCache{client: client, ttl: ttl}
}

func (c *BusCache) GetBuses(ctx context.Context) ([]model.BusSummary, bool, error) {
	raw, err := c.client.Get(ctx, busesKey).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get buses failed: %w", err)
	}

	var buses []model.BusSummary
	if err := json.Unmarshal([]byte(raw), &buses); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached buses failed: %w", err)
	}
	return buses, true, nil
}

func (c *BusCache) SetBuses(ctx context.Context, buses []model.BusSummary) error {
	payload, err := json.Marshal(buses)
	if err != nil {
		return fmt.Errorf("marshal buses cache failed: %w", err)
	}
	if err := c.client.Set(ctx, busesKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set buses failed: %w", err)
	}
	return nil
}
