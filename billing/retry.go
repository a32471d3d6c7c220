package billing

import (
	"context"
	"time"

	"github.com/jrsteele09/billing-admin/internal/errors"
	"github.com/rs/zerolog/log"
)

// RetryPolicy retries an operation that failed before any response arrived. Status codes are never retried.
type RetryPolicy struct {
	Attempts       int
	AttemptTimeout time.Duration
	BaseDelay      time.Duration
	MaxDelay       time.Duration
}

// DefaultRetryPolicy: three attempts of 15s each, waiting 1s then 2s between them (capped at 5s).
var DefaultRetryPolicy = RetryPolicy{
	Attempts:       3,
	AttemptTimeout: 15 * time.Second,
	BaseDelay:      time.Second,
	MaxDelay:       5 * time.Second,
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	if attempt > 16 {
		return p.MaxDelay
	}
	d := p.BaseDelay << attempt
	if d > p.MaxDelay || d <= 0 {
		return p.MaxDelay
	}
	return d
}

// Do runs fn until it succeeds, fails with something other than a transport error, or runs out of attempts.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = p.attempt(ctx, fn)
		if err == nil || !errors.IsTransport(err) || i == attempts-1 {
			return err
		}

		wait := p.delay(i)
		log.Warn().Err(err).Str("op", op).Int("attempt", i+1).Dur("backoff", wait).Msg("Transport failure, retrying")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "[%s] retry aborted", op)
		}
	}
	return err
}

func (p RetryPolicy) attempt(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.AttemptTimeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
	defer cancel()
	return fn(ctx)
}
