package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/slidescry/internal/config"
	"github.com/phrazzld/slidescry/internal/platform/logger"
	"github.com/phrazzld/slidescry/internal/redact"
	"github.com/sethvargo/go-retry"
)

// Policy describes how failed generation calls are retried.
type Policy struct {
	// InitialDelay is the first backoff delay; each later delay doubles.
	InitialDelay time.Duration
	// MaxDelay caps a single backoff delay.
	MaxDelay time.Duration
	// Deadline bounds the total time spent retrying, measured from the
	// first attempt.
	Deadline time.Duration
	// Retryable decides which errors are retried. Nil means IsRetryable.
	Retryable func(error) bool
}

// DefaultPolicy returns the standard policy: delays of 1s, 2s, 4s, 8s, then
// 10s, giving up after 300s.
func DefaultPolicy() Policy {
	return Policy{
		InitialDelay: 1 * time.Second,
		MaxDelay:     10 * time.Second,
		Deadline:     300 * time.Second,
		Retryable:    IsRetryable,
	}
}

// PolicyFromConfig builds a Policy from the LLM configuration section.
func PolicyFromConfig(cfg config.LLMConfig) Policy {
	return Policy{
		InitialDelay: time.Duration(cfg.RetryInitialDelaySeconds) * time.Second,
		MaxDelay:     time.Duration(cfg.RetryMaxDelaySeconds) * time.Second,
		Deadline:     time.Duration(cfg.RetryDeadlineSeconds) * time.Second,
		Retryable:    IsRetryable,
	}
}

// Validate checks that the policy describes a usable schedule.
func (p Policy) Validate() error {
	if p.InitialDelay <= 0 {
		return fmt.Errorf("%w: initial delay must be positive", ErrInvalidConfig)
	}
	if p.MaxDelay < p.InitialDelay {
		return fmt.Errorf("%w: max delay %s is below initial delay %s",
			ErrInvalidConfig, p.MaxDelay, p.InitialDelay)
	}
	if p.Deadline <= 0 {
		return fmt.Errorf("%w: deadline must be positive", ErrInvalidConfig)
	}
	return nil
}

// Backoff returns a fresh delay schedule for one retried call.
func (p Policy) Backoff() retry.Backoff {
	return retry.WithCappedDuration(p.MaxDelay, retry.NewExponential(p.InitialDelay))
}

func (p Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return IsRetryable(err)
	}
	return p.Retryable(err)
}

// Retry runs fn until it succeeds, fails with an error the policy does not
// retry, or the next backoff delay would carry the total elapsed time past
// the policy deadline. In the last case the returned error wraps both
// ErrRetryDeadlineExceeded and the last error from fn.
func Retry(ctx context.Context, policy Policy, clock Clock, fn func(ctx context.Context) error) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	if clock == nil {
		clock = SystemClock()
	}

	log := logger.FromContextOrDefault(ctx, slog.Default())
	backoff := policy.Backoff()
	start := clock.Now()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !policy.retryable(err) {
			return err
		}

		delay, stop := backoff.Next()
		elapsed := clock.Now().Sub(start)
		if stop || elapsed+delay > policy.Deadline {
			log.Warn("giving up on generation call",
				"attempts", attempt,
				"elapsed", elapsed.String(),
				"error", redact.Error(err))
			return fmt.Errorf("%w after %d attempts: %w", ErrRetryDeadlineExceeded, attempt, err)
		}

		log.Debug("retrying generation call",
			"attempt", attempt,
			"delay", delay.String(),
			"error", redact.Error(err))

		if err := clock.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}
