package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/licitaflash/licitaflash/internal/pkg/entitlements"
)

const counterTTL = 35 * 24 * time.Hour

// ErrQuotaExceeded is returned when a feature is denied for the tier or its
// monthly allowance is used up.
var ErrQuotaExceeded = errors.New("usage: quota exceeded")

// Meter counts metered feature use per subscriber and calendar month (UTC).
type Meter struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewMeter(client redis.Cmdable) *Meter {
	return &Meter{client: client, now: time.Now}
}

func (m *Meter) key(subscriberID string, feature entitlements.Feature) string {
	return fmt.Sprintf("usage:%s:%s:%s", feature, subscriberID, m.now().UTC().Format("2006-01"))
}

// Consume records one use of feature. A denied quota fails without touching
// the counter; an exhausted quota is rolled back and fails.
func (m *Meter) Consume(ctx context.Context, subscriberID string, feature entitlements.Feature, quota entitlements.Quota) (int64, error) {
	if !quota.Allowed() {
		return 0, ErrQuotaExceeded
	}

	key := m.key(subscriberID, feature)
	pipe := m.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	used := incr.Val()
	if !quota.IsUnlimited() && used > int64(quota) {
		if err := m.client.Decr(ctx, key).Err(); err != nil {
			return used - 1, err
		}
		return used - 1, ErrQuotaExceeded
	}
	return used, nil
}

// Used returns this month's count for feature.
func (m *Meter) Used(ctx context.Context, subscriberID string, feature entitlements.Feature) (int64, error) {
	n, err := m.client.Get(ctx, m.key(subscriberID, feature)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Remaining returns what is left of quota this month, or -1 when unlimited.
func (m *Meter) Remaining(ctx context.Context, subscriberID string, feature entitlements.Feature, quota entitlements.Quota) (int64, error) {
	if quota.IsUnlimited() {
		return -1, nil
	}
	if !quota.Allowed() {
		return 0, nil
	}
	used, err := m.Used(ctx, subscriberID, feature)
	if err != nil {
		return 0, err
	}
	left := int64(quota) - used
	if left < 0 {
		left = 0
	}
	return left, nil
}

// Release gives back one use of feature after the metered work failed. The
// counter never drops below zero.
func (m *Meter) Release(ctx context.Context, subscriberID string, feature entitlements.Feature) error {
	key := m.key(subscriberID, feature)
	n, err := m.client.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n < 0 {
		return m.client.Set(ctx, key, 0, counterTTL).Err()
	}
	return nil
}
