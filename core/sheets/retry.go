package sheets

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"gridsync/core/syncerr"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
)

// retryPolicy controls the backoff applied to quota and server errors.
type retryPolicy struct {
	maxRetries int
	base       time.Duration
	maxBackoff time.Duration
}

// backoff returns the delay before retry attempt (0-based).
func (p retryPolicy) backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * p.base
	if d > p.maxBackoff || d <= 0 {
		return p.maxBackoff
	}
	return d
}

// retryable reports whether err is a transient API failure.
func retryable(err error) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return false
	}
	switch {
	case gErr.Code == http.StatusTooManyRequests:
		return true
	case gErr.Code == http.StatusForbidden:
		for _, item := range gErr.Errors {
			if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
				return true
			}
		}
		return false
	case gErr.Code >= 500:
		return true
	}
	return false
}

// call runs fn under the rate limiter, retrying transient failures. Whatever error remains is
// returned as a RemoteError tagged with op.
func call(ctx context.Context, limiter *rate.Limiter, policy retryPolicy, log *zap.Logger, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= policy.maxRetries; attempt++ {
		if limiter != nil {
			if werr := limiter.Wait(ctx); werr != nil {
				return syncerr.Remote(op, werr)
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt == policy.maxRetries {
			break
		}

		backoff := policy.backoff(attempt)
		log.Warn("Rate limited by Google Sheets API, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return syncerr.Remote(op, ctx.Err())
		case <-timer.C:
		}
	}
	if retryable(err) {
		err = fmt.Errorf("giving up after %d retries: %w", policy.maxRetries, err)
	}
	return syncerr.Remote(op, err)
}
