// Package oracle runs calls against external collaborators (calendar and
// weather providers) with a per-attempt timeout, one retry on transient
// failure, tracing and metrics.
package oracle

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/julianstephens/crewplan/internal/constants"
	"github.com/julianstephens/crewplan/internal/logger"
	"github.com/julianstephens/crewplan/internal/telemetry"
)

// Policy controls timeouts and retries of a provider call.
type Policy struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// Retryable classifies errors; nil treats every error as transient
	Retryable func(error) bool
}

// DefaultPolicy returns the policy used by the built-in providers.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:    constants.OracleTimeout,
		MaxRetries: constants.OracleMaxRetries,
		RetryDelay: constants.OracleRetryDelay,
	}
}

// Call runs fn under the policy. The returned error is fn's last error, unwrapped.
func Call(ctx context.Context, oracle, op string, p Policy, fn func(context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, oracle+"."+op, attribute.String("oracle", oracle))
	started := time.Now()

	var err error
	for attempt := 0; ; attempt++ {
		err = attemptOnce(ctx, p.Timeout, fn)
		if err == nil || attempt >= p.MaxRetries || ctx.Err() != nil {
			break
		}
		if p.Retryable != nil && !p.Retryable(err) {
			break
		}
		logger.Debug("Retrying provider call", "oracle", oracle, "op", op, "attempt", attempt+1, "error", err)
		if !sleep(ctx, p.RetryDelay) {
			break
		}
	}

	if IsTimeout(err) && ctx.Err() == nil {
		logger.Warn("Provider call timed out", "oracle", oracle, "op", op, "timeout", p.Timeout)
	}
	telemetry.RecordOracleCall(ctx, oracle, err, time.Since(started))
	telemetry.EndSpan(span, err)
	return err
}

func attemptOnce(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// IsTimeout reports whether err is a deadline or cancellation.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
