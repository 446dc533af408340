package cache

import (
	"context"
	"time"
)

// WindowCounter counts hits per key inside a fixed expiry window. The first hit opens
// the window; later hits only see the remaining time-to-live.
type WindowCounter interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

var _ WindowCounter = (*RedisStore)(nil)
