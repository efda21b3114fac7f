package store

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryConfig controls exponential backoff when connecting to a journal
// backend that may still be starting.
type RetryConfig struct {
	MaxRetries int           // 0 = single attempt
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
	}
}

// Retry runs fn until it succeeds, retries are exhausted or ctx is done.
// It returns the number of attempts made and the last error.
func Retry(ctx context.Context, cfg RetryConfig, fn func(context.Context) error) (attempts int, err error) {
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err = fn(ctx); err == nil {
			return attempt + 1, nil
		}
		if attempt == cfg.MaxRetries {
			break
		}
		t := time.NewTimer(backoffWithJitter(cfg.BaseDelay, cfg.MaxDelay, attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return attempt + 1, err
		case <-t.C:
		}
	}
	return cfg.MaxRetries + 1, err
}

// backoffWithJitter computes min(base * 2^attempt, max) +/- 25%.
func backoffWithJitter(base, max time.Duration, attempt int) time.Duration {
	delay := base << uint(attempt)
	if delay > max || delay <= 0 {
		delay = max
	}
	quarter := delay / 4
	if quarter > 0 {
		delay += time.Duration(rand.Int64N(int64(quarter*2))) - quarter
	}
	return delay
}
