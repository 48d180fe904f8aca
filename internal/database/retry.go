package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/attendance-api/internal/config"
	"github.com/deppfellow/attendance-api/internal/errs"
)

// RetryPolicy controls startup connection attempts.
//
// The wait before attempt n+1 is InitialBackoff * 2^(n-1); there is no
// wait after the final attempt.
type RetryPolicy struct {
	Attempts       int
	InitialBackoff time.Duration

	// Sleep waits for d or until ctx is done. Nil means a real timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// PolicyFromConfig builds the policy from database.connect_attempts and
// database.connect_backoff.
func PolicyFromConfig(cfg config.DatabaseConfig) RetryPolicy {
	return RetryPolicy{
		Attempts:       cfg.ConnectAttempts,
		InitialBackoff: cfg.ConnectBackoff,
	}
}

// Retry runs op until it succeeds or the policy is exhausted.
//
// Only connection failures and unclassified errors are retried; any other
// classified error is returned as is after the first attempt. On
// exhaustion it returns a ConnectionFailure wrapping the last error.
func Retry(ctx context.Context, policy RetryPolicy, logger *zerolog.Logger, op func(ctx context.Context) error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	sleep := policy.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	backoff := policy.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			if attempt > 1 {
				logger.Info().Int("attempt", attempt).Msg("database connection established")
			}
			return nil
		}

		if kind := errs.KindOf(lastErr); kind != "" && kind != errs.KindConnection {
			return lastErr
		}

		if attempt == attempts {
			break
		}

		logger.Warn().
			Err(lastErr).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Dur("backoff", backoff).
			Msg("database connection attempt failed, retrying")

		if err := sleep(ctx, backoff); err != nil {
			return errs.Connection(fmt.Errorf("%w (last error: %v)", err, lastErr), "database connection attempts cancelled")
		}
		backoff *= 2
	}

	logger.Error().Err(lastErr).Int("attempts", attempts).Msg("could not connect to the database")

	return errs.Connection(lastErr, fmt.Sprintf("could not connect to the database after %d attempts", attempts))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
