package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// windowScript counts atomically and starts the window on the first hit.
var windowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// Redis is a fixed-window limiter sharing counters across instances. Failures
// degrade to the in-memory fallback so a Redis outage never takes the public
// endpoints down with it.
type Redis struct {
	client   *redis.Client
	window   time.Duration
	prefix   string
	fallback *InMemory
}

// NewRedis creates a Redis-backed limiter with the given window.
func NewRedis(client *redis.Client, window time.Duration) *Redis {
	if window <= 0 {
		window = time.Minute
	}
	return &Redis{
		client:   client,
		window:   window,
		prefix:   "signalbox:rl:",
		fallback: NewInMemory(window),
	}
}

func (l *Redis) Allow(key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := windowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Result()
	if err != nil {
		return l.fallback.Allow(key, limit)
	}
	vals, ok := res.([]interface{})
	if !ok || len(vals) < 2 {
		return l.fallback.Allow(key, limit)
	}
	count, _ := vals[0].(int64)
	ttlMs, _ := vals[1].(int64)
	if ttlMs < 0 {
		ttlMs = l.window.Milliseconds()
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   int(count) <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   time.Now().UTC().Add(time.Duration(ttlMs) * time.Millisecond),
	}
}
