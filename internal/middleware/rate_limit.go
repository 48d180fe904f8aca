package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/deppfellow/attendance-api/internal/errs"
	"github.com/deppfellow/attendance-api/internal/server"
)

const redisLimiterTimeout = 500 * time.Millisecond

type RateLimitMiddleware struct {
	server *server.Server
	store  middleware.RateLimiterStore
}

// NewRateLimitMiddleware counts requests in redis when it is configured,
// so every replica shares one budget, and in process memory otherwise.
func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	cfg := s.Config.RateLimit

	var store middleware.RateLimiterStore
	if s.Redis != nil {
		store = NewRedisRateLimiterStore(s.Redis, cfg.Requests, cfg.Window, s.Logger)
	} else {
		store = middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
			Burst:     cfg.Requests,
			ExpiresIn: 3 * cfg.Window,
		})
	}

	return &RateLimitMiddleware{server: s, store: store}
}

// Limit rejects clients that exceed the configured budget with 429.
// It is a pass-through when rate limiting is disabled.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	cfg := r.server.Config.RateLimit
	if !cfg.Enabled || cfg.Requests <= 0 || cfg.Window <= 0 {
		return passThrough
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: r.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().Str("client", identifier).Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError("Too many requests")
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewBadRequestError("Could not identify client", false, nil, nil, nil)
		},
	})
}

func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]any{
			"endpoint": endpoint,
		})
	}
}

// RedisRateLimiterStore is a fixed-window counter: one key per client per
// window, incremented on every request and expired with the window.
type RedisRateLimiterStore struct {
	client   *redis.Client
	requests int
	window   time.Duration
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewRedisRateLimiterStore(client *redis.Client, requests int, window time.Duration, logger *zerolog.Logger) *RedisRateLimiterStore {
	return &RedisRateLimiterStore{
		client:   client,
		requests: requests,
		window:   window,
		logger:   logger,
		now:      time.Now,
	}
}

// Allow fails open: a redis error admits the request.
func (s *RedisRateLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisLimiterTimeout)
	defer cancel()

	bucket := s.now().UnixNano() / s.window.Nanoseconds()
	key := fmt.Sprintf("rate_limit:%s:%d", identifier, bucket)

	var count *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, s.window)
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("rate limiter store unavailable, allowing request")
		return true, nil
	}

	return count.Val() <= int64(s.requests), nil
}
