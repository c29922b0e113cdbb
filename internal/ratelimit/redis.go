package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisOptions holds the connection settings for a shared limiter.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// RedisLimiter shares the sliding window between backend replicas using one
// sorted set per key, scored by request time in microseconds.
type RedisLimiter struct {
	rdb    *redis.Client
	cfg    Config
	prefix string
	now    func() time.Time
}

// NewRedisLimiter connects and pings the server.
func NewRedisLimiter(ctx context.Context, opts RedisOptions, cfg Config) (*RedisLimiter, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return newRedisLimiter(rdb, opts.Prefix, cfg), nil
}

func newRedisLimiter(rdb *redis.Client, prefix string, cfg Config) *RedisLimiter {
	if prefix == "" {
		prefix = "hrify:rate:"
	}
	return &RedisLimiter{rdb: rdb, cfg: cfg, prefix: prefix, now: time.Now}
}

// slidingWindow trims expired entries, then adds the request only while the
// window has room. Running as one script keeps replicas from racing past the
// limit. Returns 1 when allowed.
var slidingWindow = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
if redis.call("ZCARD", KEYS[1]) >= tonumber(ARGV[2]) then
  return 0
end
redis.call("ZADD", KEYS[1], ARGV[3], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return 1
`)

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.cfg.Requests <= 0 {
		return true, nil
	}

	now := l.now()
	windowStart := now.Add(-l.cfg.Window).UnixMicro()

	allowed, err := slidingWindow.Run(ctx, l.rdb, []string{l.prefix + key},
		strconv.FormatInt(windowStart, 10),
		l.cfg.Requests,
		strconv.FormatInt(now.UnixMicro(), 10),
		uuid.NewString(),
		l.cfg.Window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}
	return allowed == 1, nil
}

func (l *RedisLimiter) Close() error {
	return l.rdb.Close()
}
