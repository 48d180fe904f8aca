// Package server defines the core Server struct that composes the app's
// main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database handle and its readiness
//   - optional redis client
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/deppfellow/attendance-api/internal/config"
	"github.com/deppfellow/attendance-api/internal/database"
	loggerPkg "github.com/deppfellow/attendance-api/internal/logger"
)

const redisPingTimeout = 5 * time.Second

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself. Readiness tracks whether the database
// has been provisioned; requests consult it through the readiness
// middleware.
type Server struct {
	Config        *config.Config
	Logger        *zerolog.Logger
	LoggerService *loggerPkg.LoggerService
	DB            *database.Database

	// Redis is nil when redis.address is not configured.
	Redis *redis.Client

	httpServer *http.Server

	retryPolicy database.RetryPolicy
	ready       atomic.Bool
	initGroup   singleflight.Group
}

// New constructs a Server.
//
// No database I/O happens here; call Initialize to provision. A Redis
// connection failure is logged and does not block startup.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		retryPolicy:   database.PolicyFromConfig(cfg.Database),
	}

	if cfg.Redis.Address != "" {
		server.Redis = newRedisClient(cfg, logger, loggerService)
	}

	return server, nil
}

func newRedisClient(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	if loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("failed to connect to redis, continuing without it for now")
	}

	return client
}

// Initialize provisions the database with the configured retry policy
// and marks the server ready on success.
func (s *Server) Initialize(ctx context.Context) error {
	if err := s.DB.Provision(ctx, s.retryPolicy); err != nil {
		s.ready.Store(false)
		return err
	}

	s.ready.Store(true)
	return nil
}

// IsReady reports whether the database has been provisioned.
func (s *Server) IsReady() bool {
	return s.ready.Load()
}

// MarkUnavailable clears readiness after a request observed the database
// as unreachable, so the next request re-provisions.
func (s *Server) MarkUnavailable() {
	if s.ready.CompareAndSwap(true, false) {
		s.Logger.Warn().Msg("database marked unavailable")
	}
}

// EnsureReady returns nil when ready. Otherwise it makes one provisioning
// attempt; concurrent callers share that attempt.
func (s *Server) EnsureReady(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}

	_, err, _ := s.initGroup.Do("provision", func() (any, error) {
		if s.ready.Load() {
			return nil, nil
		}

		// The attempt outlives any single request that triggered it.
		err := s.DB.Provision(context.WithoutCancel(ctx), database.RetryPolicy{Attempts: 1})
		if err != nil {
			return nil, err
		}

		s.ready.Store(true)
		s.Logger.Info().Msg("database re-initialized")
		return nil, nil
	})

	return err
}

// SetupHTTPServer configures the internal net/http server.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. It requires SetupHTTPServer to be called
// first and blocks until the server stops.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("dialect", s.DB.Dialect().Name()).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server, then closes redis and the
// database.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}
