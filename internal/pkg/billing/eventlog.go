package billing

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	eventLogPrefix = "billing:webhook:seen:"
	eventLogTTL    = 72 * time.Hour
)

// EventLog remembers event ids that were already reconciled.
type EventLog interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID string) error
}

type redisEventLog struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisEventLog keeps applied event ids in redis for three days, which
// covers the provider's retry window.
func NewRedisEventLog(client redis.Cmdable) EventLog {
	return &redisEventLog{client: client, ttl: eventLogTTL}
}

func (l *redisEventLog) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := l.client.Exists(ctx, eventLogPrefix+eventID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *redisEventLog) Remember(ctx context.Context, eventID string) error {
	return l.client.Set(ctx, eventLogPrefix+eventID, time.Now().Unix(), l.ttl).Err()
}
