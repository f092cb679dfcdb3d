package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"donations/internal/domain"
	"donations/internal/infra"
	"donations/internal/sqlinline"
)

// DeliveryRepositoryPG implements domain.DeliveryStore using PostgreSQL so
// the seen-set is shared by every API replica.
type DeliveryRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewDeliveryRepository creates a new delivery repo.
func NewDeliveryRepository(sql infra.SQLExecutor) *DeliveryRepositoryPG {
	return &DeliveryRepositoryPG{sql: sql}
}

// EnsureSchema creates the deliveries table if it does not exist.
func (r *DeliveryRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QCreateWebhookDeliveries); err != nil {
		return fmt.Errorf("ensure webhook_deliveries: %w", err)
	}
	return nil
}

// Claim inserts key, or revives it when the previous claim expired. A
// conflicting live row returns no rows, which means the key was already seen.
func (r *DeliveryRepositoryPG) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	var claimed string
	err := r.sql.QueryRow(ctx, sqlinline.QClaimWebhookDelivery, key, ttl.Seconds()).Scan(&claimed)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("claim webhook delivery: %w", err)
	}
	return true, nil
}

// PurgeExpired deletes expired claims and returns how many were removed.
func (r *DeliveryRepositoryPG) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QPurgeExpiredWebhookDeliveries)
	if err != nil {
		return 0, fmt.Errorf("purge webhook deliveries: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ domain.DeliveryStore = (*DeliveryRepositoryPG)(nil)
