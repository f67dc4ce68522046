package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScript trims stale members, counts the window, and conditionally
// records the new timestamp in a single server-side step so concurrent
// callers cannot both observe a count below the limit and both record.
// KEYS[1] window key; ARGV: window start (ns), score (ns), member, limit,
// TTL (s). Returns 1 when admitted, 0 when rejected.
var allowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[4]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[3])
redis.call('EXPIRE', KEYS[1], ARGV[5])
return 1
`)

// RedisSlidingWindow keeps the per-key timestamp log in a Redis sorted set
// so the admission limit holds across multiple server instances. Scores are
// nanosecond timestamps; a sequence suffix keeps members distinct when two
// requests land on the same nanosecond. Keys expire on their own after a
// full idle window, so no sweep goroutine is needed.
type RedisSlidingWindow struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	seq    atomic.Int64
}

func NewRedisSlidingWindow(client *redis.Client, limit int, window time.Duration) *RedisSlidingWindow {
	return &RedisSlidingWindow{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:",
	}
}

func (r *RedisSlidingWindow) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-r.window).UnixNano()
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.FormatInt(r.seq.Add(1), 10)
	ttl := int64((r.window + time.Second) / time.Second)

	admitted, err := allowScript.Run(ctx, r.client, []string{r.prefix + key},
		strconv.FormatInt(windowStart, 10),
		strconv.FormatInt(now.UnixNano(), 10),
		member,
		r.limit,
		ttl,
	).Int()
	if err != nil {
		return false, fmt.Errorf("ratelimit check failed: %w", err)
	}
	return admitted == 1, nil
}
