package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Limiter blocks until the caller may issue one request
type Limiter interface {
	Wait(ctx context.Context) error
}

type unlimited struct{}

func (unlimited) Wait(ctx context.Context) error { return ctx.Err() }

// Unlimited never blocks
var Unlimited Limiter = unlimited{}

// NewLocal token bucket shared by the goroutines of this process; rps <= 0 disables limiting
func NewLocal(rps, burst int) Limiter {
	if rps <= 0 {
		return Unlimited
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// RedisLimiter fixed one-second window shared by every process using the same key
type RedisLimiter struct {
	client *redis.Client
	key    string
	limit  int64
	now    func() time.Time
}

// NewRedis falls back to a local limiter when client is nil
func NewRedis(client *redis.Client, key string, rps, burst int) Limiter {
	if rps <= 0 {
		return Unlimited
	}
	if client == nil {
		return NewLocal(rps, burst)
	}
	return &RedisLimiter{client: client, key: key, limit: int64(rps), now: time.Now}
}

func (l *RedisLimiter) Wait(ctx context.Context) error {
	for {
		now := l.now()
		window := fmt.Sprintf("%s:%d", l.key, now.Unix())

		n, err := l.client.Incr(ctx, window).Result()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// redis trouble must not stall enrichment
			log.Warnf("⚠️  Rate limit window unavailable, proceeding: %v", err)
			return nil
		}
		if n == 1 {
			l.client.Expire(ctx, window, 2*time.Second)
		}
		if n <= l.limit {
			return nil
		}

		next := now.Truncate(time.Second).Add(time.Second)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(next.Sub(now)):
		}
	}
}
