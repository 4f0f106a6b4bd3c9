package llm

import (
	"context"
	"errors"
	"time"
)

// RetryConfig configures exponential backoff at the process boundary.
type RetryConfig struct {
	MaxAttempts int           // total attempts including the first
	BaseDelay   time.Duration // delay before the second attempt, doubled after that
	MaxDelay    time.Duration // 0 = uncapped

	// OnRetry is called before each backoff sleep.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryConfig returns default configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
	}
}

type retryingGenerator struct {
	next  Generator
	cfg   RetryConfig
	sleep func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps g with exponential backoff. Cancellation and malformed
// output are never retried.
func WithRetry(g Generator, cfg RetryConfig) Generator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultRetryConfig().BaseDelay
	}
	return &retryingGenerator{next: g, cfg: cfg, sleep: sleepCtx}
}

func (r *retryingGenerator) Model() string { return r.next.Model() }

func (r *retryingGenerator) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return r.do(ctx, func() (string, error) {
		return r.next.GenerateText(ctx, prompt, maxTokens)
	})
}

func (r *retryingGenerator) GenerateJSON(ctx context.Context, prompt string, schema []byte) (string, error) {
	return r.do(ctx, func() (string, error) {
		return r.next.GenerateJSON(ctx, prompt, schema)
	})
}

func (r *retryingGenerator) do(ctx context.Context, call func() (string, error)) (string, error) {
	delay := r.cfg.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		out, err := call()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt == r.cfg.MaxAttempts || !retryable(ctx, err) {
			break
		}
		if r.cfg.OnRetry != nil {
			r.cfg.OnRetry(attempt, err, delay)
		}
		if err := r.sleep(ctx, delay); err != nil {
			return "", &ModelError{Reason: ReasonUnknown, Err: err}
		}
		delay *= 2
		if r.cfg.MaxDelay > 0 && delay > r.cfg.MaxDelay {
			delay = r.cfg.MaxDelay
		}
	}
	return "", lastErr
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	var me *ModelError
	if errors.As(err, &me) && me.Reason == ReasonMalformedOutput {
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
