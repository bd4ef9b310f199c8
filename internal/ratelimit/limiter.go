package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/config"
	"github.com/feral-file/ff-registry/internal/logger"
	"github.com/feral-file/ff-registry/internal/metrics"
)

const (
	// REDIS_PROBE_INTERVAL is how long the limiter stays local after a Redis failure
	REDIS_PROBE_INTERVAL = 10 * time.Second

	// LOCAL_IDLE_EXPIRY is the default idle time after which a local bucket is dropped
	LOCAL_IDLE_EXPIRY = 10 * time.Minute
)

// Decision is the outcome of spending one token
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter limits requests per client key
//
//go:generate mockgen -source=limiter.go -destination=../mocks/limiter.go -package=mocks -mock_names=Limiter=MockLimiter
type Limiter interface {
	// Allow spends one token from key's bucket.
	// An error means no backend could decide and the caller picks the policy.
	Allow(ctx context.Context, key string) (Decision, error)
}

type limiter struct {
	cfg         config.RateLimitConfig
	distributed adapter.RedisRateLimiter
	local       *cache.Cache
	clock       adapter.Clock
	metrics     *metrics.Metrics
	// unix nanos until which Redis is skipped
	redisDownUntil atomic.Int64
}

// New creates a limiter. A nil distributed limiter keeps every bucket in process.
func New(cfg config.RateLimitConfig, distributed adapter.RedisRateLimiter, clock adapter.Clock, m *metrics.Metrics) Limiter {
	if cfg.Burst <= 0 {
		cfg.Burst = max(cfg.RequestsPerMinute, 1)
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ff:registry:limiter:"
	}
	if cfg.LocalIdleExpiry <= 0 {
		cfg.LocalIdleExpiry = LOCAL_IDLE_EXPIRY
	}
	return &limiter{
		cfg:         cfg,
		distributed: distributed,
		local:       cache.New(cfg.LocalIdleExpiry, cfg.LocalIdleExpiry),
		clock:       clock,
		metrics:     m,
	}
}

func (l *limiter) Allow(ctx context.Context, key string) (Decision, error) {
	decision, err := l.allow(ctx, key)
	if err == nil && !decision.Allowed {
		l.metrics.IncrementRateLimited()
	}
	return decision, err
}

func (l *limiter) allow(ctx context.Context, key string) (Decision, error) {
	now := l.clock.Now()
	if l.distributed != nil && now.UnixNano() >= l.redisDownUntil.Load() {
		decision, err := l.allowDistributed(ctx, key)
		if err == nil {
			return decision, nil
		}
		if ctx.Err() != nil {
			return Decision{}, ctx.Err()
		}

		l.redisDownUntil.Store(now.Add(REDIS_PROBE_INTERVAL).UnixNano())
		if !l.cfg.LocalFallback {
			return Decision{}, fmt.Errorf("redis rate limiter unavailable: %w", err)
		}
		logger.WarnCtx(ctx, "Redis rate limiter error, falling back to local", zap.Error(err))
	} else if l.distributed != nil && !l.cfg.LocalFallback {
		return Decision{}, fmt.Errorf("redis rate limiter unavailable")
	}

	return l.allowLocal(key, now), nil
}

func (l *limiter) allowDistributed(ctx context.Context, key string) (Decision, error) {
	res, err := l.distributed.Allow(ctx, l.cfg.KeyPrefix+key, redis_rate.Limit{
		Rate:   l.cfg.RequestsPerMinute,
		Burst:  l.cfg.Burst,
		Period: time.Minute,
	})
	if err != nil {
		return Decision{}, err
	}
	if res.Allowed == 0 {
		logger.Debug("Rate limit exceeded",
			zap.String("key", key),
			zap.Duration("retry_after", res.RetryAfter),
		)
		return Decision{Allowed: false, Remaining: res.Remaining, RetryAfter: res.RetryAfter}, nil
	}
	return Decision{Allowed: true, Remaining: res.Remaining}, nil
}

func (l *limiter) allowLocal(key string, now time.Time) Decision {
	bucket := l.bucket(key)
	reservation := bucket.ReserveN(now, 1)
	if !reservation.OK() {
		return Decision{Allowed: false, RetryAfter: time.Minute}
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}
	}
	return Decision{Allowed: true, Remaining: int(bucket.TokensAt(now))}
}

// bucket returns the key's local bucket. Every access pushes its expiry out,
// so only idle clients lose their bucket.
func (l *limiter) bucket(key string) *rate.Limiter {
	if v, ok := l.local.Get(key); ok {
		l.local.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	bucket := rate.NewLimiter(rate.Limit(float64(l.cfg.RequestsPerMinute)/60), l.cfg.Burst)
	if err := l.local.Add(key, bucket, cache.DefaultExpiration); err != nil {
		// lost the race to another request for the same key
		if v, ok := l.local.Get(key); ok {
			l.local.SetDefault(key, v)
			return v.(*rate.Limiter)
		}
	}
	return bucket
}
