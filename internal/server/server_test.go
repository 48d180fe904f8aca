package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/attendance-api/internal/config"
	"github.com/deppfellow/attendance-api/internal/errs"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	logger := zerolog.Nop()
	s, err := New(cfg, &logger, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func sqliteConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Database.Dialect = "sqlite"
	cfg.Database.Path = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	return cfg
}

func unreachableMySQLConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 1
	cfg.Database.ConnectAttempts = 1
	cfg.Database.ConnectTimeout = 200 * time.Millisecond
	return cfg
}

func TestInitializeMarksReady(t *testing.T) {
	s := newTestServer(t, sqliteConfig())
	require.False(t, s.IsReady())

	require.NoError(t, s.Initialize(context.Background()))
	require.True(t, s.IsReady())

	s.MarkUnavailable()
	require.False(t, s.IsReady())

	require.NoError(t, s.EnsureReady(context.Background()))
	require.True(t, s.IsReady())
}

func TestInitializeFailureLeavesServerNotReady(t *testing.T) {
	s := newTestServer(t, unreachableMySQLConfig())

	err := s.Initialize(context.Background())
	require.Equal(t, errs.KindConnection, errs.KindOf(err))
	require.False(t, s.IsReady())

	err = s.EnsureReady(context.Background())
	require.Equal(t, errs.KindConnection, errs.KindOf(err))
	require.False(t, s.IsReady())
}

func TestEnsureReadyConcurrentCallers(t *testing.T) {
	s := newTestServer(t, sqliteConfig())

	var wg sync.WaitGroup
	errCh := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- s.EnsureReady(context.Background())
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}
	require.True(t, s.IsReady())
}

func TestStartRequiresHTTPServer(t *testing.T) {
	s := newTestServer(t, sqliteConfig())
	require.EqualError(t, s.Start(), "HTTP server not initialized")
}
