package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/suar-net/pixel-exchange/internal/model"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory is a per-key token bucket limiter held in process memory.
// It allows `requests` per `window` with a burst of `requests`.
type Memory struct {
	every rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64
}

func NewMemory(requests int, window time.Duration) *Memory {
	if requests < 1 {
		requests = 1
	}
	return &Memory{
		every:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		ttl:      2 * window,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

func (m *Memory) Limit(_ context.Context, key string) (model.RateLimitDecision, error) {
	now := m.now()

	m.mu.Lock()
	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.every, m.burst)}
		m.visitors[key] = v
	}
	v.lastSeen = now
	m.lookups++
	if m.lookups%1024 == 0 {
		m.evictLocked(now)
	}
	m.mu.Unlock()

	return model.RateLimitDecision{Success: v.limiter.AllowN(now, 1)}, nil
}

// evictLocked drops buckets idle for longer than ttl. A bucket idle that
// long has refilled completely, so forgetting it changes no decision.
func (m *Memory) evictLocked(now time.Time) {
	for k, v := range m.visitors {
		if now.Sub(v.lastSeen) > m.ttl {
			delete(m.visitors, k)
		}
	}
}

func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visitors)
}
