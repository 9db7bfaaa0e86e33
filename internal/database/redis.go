package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis connects to Redis and verifies the connection.
func ConnectRedis(ctx context.Context, redisURI string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURI)
	if err != nil {
		return nil, err
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// RateLimitKeyPrefix is the Redis key prefix for rate limiting
const RateLimitKeyPrefix = "ratelimit:"

// WindowDecision is the outcome of one sliding-window check.
type WindowDecision struct {
	Allowed bool
	Count   int
	Limit   int
	ResetAt time.Time
}

func (d WindowDecision) Remaining() int {
	if r := d.Limit - d.Count; r > 0 {
		return r
	}
	return 0
}

// slidingWindowScript keeps one sorted-set member per accepted request scored by its
// timestamp in milliseconds. Requests are rejected once the window already holds limit
// members; rejected requests are not recorded.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
  local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
  return {0, count, tonumber(oldest[2])}
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {1, count + 1, tonumber(first[2])}
`)

// SlidingWindow is a per-key sliding-window request counter stored in Redis.
type SlidingWindow struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewSlidingWindow(client *redis.Client, limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{client: client, limit: limit, window: window, now: time.Now}
}

func (s *SlidingWindow) Allow(ctx context.Context, key string) (WindowDecision, error) {
	now := s.now()
	res, err := slidingWindowScript.Run(ctx, s.client,
		[]string{RateLimitKeyPrefix + key},
		now.UnixMilli(), s.window.Milliseconds(), s.limit,
		strconv.FormatInt(now.UnixNano(), 10)+"-"+uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return WindowDecision{}, err
	}
	if len(res) != 3 {
		return WindowDecision{}, fmt.Errorf("sliding window: unexpected reply %v", res)
	}

	return WindowDecision{
		Allowed: res[0] == 1,
		Count:   int(res[1]),
		Limit:   s.limit,
		ResetAt: time.UnixMilli(res[2]).Add(s.window),
	}, nil
}
