package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/suar-net/pixel-exchange/internal/model"
)

// Redis is a fixed-window counter shared by every proxy instance that points
// at the same Redis.
type Redis struct {
	client   redis.Cmdable
	requests int64
	window   time.Duration
	prefix   string
	now      func() time.Time
}

func NewRedis(client redis.Cmdable, requests int, window time.Duration) *Redis {
	return &Redis{
		client:   client,
		requests: int64(requests),
		window:   window,
		prefix:   "pixel-exchange:ratelimit:",
		now:      time.Now,
	}
}

// ConnectRedis parses url and verifies the server answers.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return client, nil
}

func (r *Redis) Limit(ctx context.Context, key string) (model.RateLimitDecision, error) {
	bucket := r.now().UnixNano() / int64(r.window)
	redisKey := r.prefix + key + ":" + strconv.FormatInt(bucket, 10)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, r.window)
		return nil
	})
	if err != nil {
		return model.RateLimitDecision{}, fmt.Errorf("rate limit counter: %w", err)
	}

	return model.RateLimitDecision{Success: incr.Val() <= r.requests}, nil
}
