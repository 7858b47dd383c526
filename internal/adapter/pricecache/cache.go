// Package pricecache puts a short-lived redis cache in front of the spot
// price feed so dashboard refreshes do not hammer the upstream API.
package pricecache

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

const (
	spotKey    = "btc:spot:usd"
	defaultTTL = 5 * time.Minute
)

// Source is the upstream spot price feed being cached.
type Source interface {
	CurrentPrice(ctx context.Context) (decimal.Decimal, error)
}

// SpotCache is a read-through cache for the current BTC price. Cache
// failures are never fatal: on any redis error the upstream source is
// consulted directly.
type SpotCache struct {
	client *redis.Client
	source Source
	ttl    time.Duration
}

// New creates a spot price cache. A non-positive ttl falls back to the
// default.
func New(client *redis.Client, source Source, ttl time.Duration) *SpotCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SpotCache{client: client, source: source, ttl: ttl}
}

// CurrentPrice returns the cached spot price, fetching and caching it on a
// miss.
func (c *SpotCache) CurrentPrice(ctx context.Context) (decimal.Decimal, error) {
	cached, err := c.client.Get(ctx, spotKey).Result()
	if err == nil {
		price, parseErr := decimal.NewFromString(cached)
		if parseErr == nil {
			return price, nil
		}
		log.Printf("pricecache: discarding unparseable cached price %q", cached)
	} else if err != redis.Nil {
		log.Printf("pricecache: redis get failed, falling through to source: %v", err)
	}

	price, err := c.source.CurrentPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.client.Set(ctx, spotKey, price.String(), c.ttl).Err(); err != nil {
		log.Printf("pricecache: failed to cache spot price: %v", err)
	}
	return price, nil
}
