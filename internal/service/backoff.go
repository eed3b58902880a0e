package service

import (
	"context"
	"time"

	"github.com/finkeeper/go-ledger-sync/internal/logger"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBaseWait = time.Second
)

// withRetry runs fn up to defaultRetryAttempts times, sleeping between
// attempts on a bounded exponential schedule (base, 2*base, ...). Only
// errors accepted by retryable are retried; context cancellation cuts the
// wait short.
func withRetry(ctx context.Context, log *logger.Logger, op string, retryable func(error) bool, fn func() error) error {
	wait := defaultRetryBaseWait

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || attempt == defaultRetryAttempts || !retryable(err) {
			return err
		}

		log.Warn().
			Str("operation", op).
			Int("attempt", attempt).
			Dur("wait", wait).
			Err(err).
			Msg("transient failure, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
}
