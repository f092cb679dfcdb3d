// Package cache provides the process-local webhook delivery seen-set.
package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"donations/internal/domain"
)

// DefaultCleanupInterval is how often expired claims are evicted.
const DefaultCleanupInterval = 10 * time.Minute

// DeliveryCache implements domain.DeliveryStore on top of go-cache. Claims
// live only as long as the process.
type DeliveryCache struct {
	cache *gocache.Cache
}

// NewDeliveryCache creates a cache whose entries default to ttl.
func NewDeliveryCache(ttl time.Duration) *DeliveryCache {
	return &DeliveryCache{cache: gocache.New(ttl, DefaultCleanupInterval)}
}

// Claim atomically adds key. go-cache's Add fails when an unexpired entry exists.
func (c *DeliveryCache) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if err := c.cache.Add(key, time.Now(), ttl); err != nil {
		return false, nil
	}
	return true, nil
}

// Len reports the number of live claims, including ones awaiting cleanup.
func (c *DeliveryCache) Len() int { return c.cache.ItemCount() }

var _ domain.DeliveryStore = (*DeliveryCache)(nil)
