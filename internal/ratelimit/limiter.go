// Package ratelimit decides whether a caller may submit right now.
//
// The proxy itself keeps no counters: each Limiter is a client of some
// counter store (Redis in production, an in-process bucket map for single
// instances) and only the boolean decision crosses the boundary.
package ratelimit

import (
	"context"

	"github.com/suar-net/pixel-exchange/internal/model"
)

// UnknownKey buckets callers that arrive without a client-IP header.
const UnknownKey = "unknown"

type Limiter interface {
	Limit(ctx context.Context, key string) (model.RateLimitDecision, error)
}

// Func adapts a plain function to Limiter.
type Func func(ctx context.Context, key string) (model.RateLimitDecision, error)

func (f Func) Limit(ctx context.Context, key string) (model.RateLimitDecision, error) {
	return f(ctx, key)
}

// AllowAll never throttles.
var AllowAll = Func(func(context.Context, string) (model.RateLimitDecision, error) {
	return model.RateLimitDecision{Success: true}, nil
})
