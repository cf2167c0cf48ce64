package database

import (
	"context"
	"fmt"
	"time"

	"keyword-intelligence/internal/common/logger"
)

// Pinger is implemented by every client in this package.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitForConnection pings p until it answers, doubling the delay between
// attempts. Dependencies started alongside the worker manager are often
// not ready on the first try.
func WaitForConnection(ctx context.Context, name string, p Pinger, attempts int, delay time.Duration, log logger.Logger) error {
	var err error
	for i := 1; i <= attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = p.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		log.Warn("Dependency not ready", map[string]interface{}{
			"dependency": name,
			"attempt":    i,
			"error":      err.Error(),
		})
		if i == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("%s unreachable after %d attempts: %w", name, attempts, err)
}
