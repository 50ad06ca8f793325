package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	pingTimeout  = 5 * time.Second
	pingAttempts = 5
	pingBackoff  = time.Second
)

// pingWithRetry keeps pinging until the backend answers, so the service can
// start alongside its database and Redis containers. The wait between
// attempts doubles each time.
func pingWithRetry(ctx context.Context, log zerolog.Logger, backend string, ping func(context.Context) error) error {
	wait := pingBackoff
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == pingAttempts {
			break
		}

		log.Warn().Err(err).
			Str("backend", backend).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("Backend not ready")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return fmt.Errorf("ping %s: %w", backend, err)
}
