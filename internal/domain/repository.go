package domain

import (
	"context"
	"time"
)

// DeliveryStore is the short-lived seen-set used to de-duplicate webhook deliveries.
type DeliveryStore interface {
	// Claim records key and reports true if it was not already present within ttl.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
