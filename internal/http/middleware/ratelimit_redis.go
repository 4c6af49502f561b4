package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// NewRedisClient connects to redis and verifies the connection with a ping.
// An empty addr returns a nil client, which makes limiters fall back to memory.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// key format: rl:<name>:<window_seconds>:<identifier>
func (l *RateLimiter) redisKey(ident string) string {
	return "rl:" + l.name + ":" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" + ident
}

// INCR and EXPIRE NX go out in one transaction, so a counter never exists
// without a TTL. NX keeps the first hit's expiry as the window end.
func (l *RateLimiter) incrRedis(ctx context.Context, ident string) (int64, error) {
	key := l.redisKey(ident)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
