package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CounterStore is the atomic increment-and-get primitive the limiter is
// built on. One call counts one attempt, exactly once; there is no separate
// read step that could race with concurrent attempts.
type CounterStore interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisCounterStore backs CounterStore with redis INCR.
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore wraps an existing redis client.
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// Incr atomically increments the key and returns the post-increment value.
// The TTL is set on first increment; keys carry the window start in their
// name, so stale windows simply expire.
func (s *RedisCounterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		s.client.Expire(ctx, key, ttl)
	}
	return count, nil
}

// LimiterConfig carries the fixed-window parameters.
type LimiterConfig struct {
	Window   time.Duration
	ActorMax int64
	AddrMax  int64
}

// Limiter enforces two independent fixed-window creation limits: one per
// actor identity, one per hashed client address. Storage errors fail open.
type Limiter struct {
	store  CounterStore
	logger *zap.Logger
	cfg    LimiterConfig
}

// NewLimiter builds a limiter over the given counter store.
func NewLimiter(store CounterStore, cfg LimiterConfig, logger *zap.Logger) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{store: store, logger: logger, cfg: cfg}
}

// AllowActor records one creation attempt for the actor and reports whether
// it is still within the window's ceiling.
func (l *Limiter) AllowActor(ctx context.Context, actorID string) bool {
	return l.allow(ctx, "actor", actorID, l.cfg.ActorMax)
}

// AllowAddr records one creation attempt for the client address. The
// address is hashed before it becomes part of a key. Unknown addresses are
// allowed: there is nothing meaningful to count.
func (l *Limiter) AllowAddr(ctx context.Context, addr string) bool {
	hashed := hashAddr(addr, addrHashLenLimiter)
	if hashed == "" {
		return true
	}
	return l.allow(ctx, "addr", hashed, l.cfg.AddrMax)
}

func (l *Limiter) allow(ctx context.Context, kind, key string, max int64) bool {
	if max <= 0 {
		return true
	}

	windowStart := time.Now().Truncate(l.cfg.Window).UnixMilli()
	counterKey := fmt.Sprintf("ratelimit:%s:%s:%d", kind, key, windowStart)

	// TTL of two windows keeps the counter alive for the whole window while
	// still garbage-collecting old ones.
	count, err := l.store.Incr(ctx, counterKey, 2*l.cfg.Window)
	if err != nil {
		l.logger.Warn("rate limiter store unavailable, failing open",
			zap.String("kind", kind), zap.Error(err))
		return true
	}

	return count <= max
}
