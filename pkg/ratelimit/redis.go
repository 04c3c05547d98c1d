package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "flowtrace:ratelimit:"

// slidingWindowScript атомарно чистит окно, считает и добавляет отметку.
// Возвращает {allowed, remaining, oldest_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local current = redis.call('ZCARD', key)

if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window)
	return {1, limit - current - 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {0, 0, tonumber(oldest[2])}
`)

// RedisLimiter sliding window в sorted set, общий для всех реплик
type RedisLimiter struct {
	client *redis.Client
	opts   Options
	seq    func() string
}

// NewRedisLimiter подключается к Redis и проверяет соединение
func NewRedisLimiter(opts Options) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisLimiterFromClient(client, opts), nil
}

// NewRedisLimiterFromClient использует готовый клиент
func NewRedisLimiterFromClient(client *redis.Client, opts Options) *RedisLimiter {
	if opts.Requests <= 0 {
		opts.Requests = DefaultOptions().Requests
	}
	if opts.Window <= 0 {
		opts.Window = DefaultOptions().Window
	}
	return &RedisLimiter{
		client: client,
		opts:   opts,
		seq:    func() string { return fmt.Sprintf("%d", time.Now().UnixNano()) },
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (*Decision, error) {
	now := time.Now().UnixMilli()
	window := l.opts.Window.Milliseconds()

	res, err := slidingWindowScript.Run(ctx, l.client, []string{redisKeyPrefix + key},
		l.opts.Requests, window, now, l.seq()).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis script error: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("unexpected redis script result: %v", res)
	}

	d := &Decision{
		Allowed:   res[0] == 1,
		Limit:     l.opts.Requests,
		Remaining: int(res[1]),
	}
	if !d.Allowed && res[2] > 0 {
		d.RetryAfter = time.Duration(res[2]+window-now) * time.Millisecond
	}
	return d, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
