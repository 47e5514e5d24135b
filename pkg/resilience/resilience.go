package resilience

import (
	"context"
	"sync"
	"time"
)

// RetryConfig controls retry behavior for a transient-failure-prone call.
// MaxAttempts of 1 disables retries entirely.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64

	// ShouldRetry decides whether a failure is worth another attempt.
	// Nil means every error is retried.
	ShouldRetry func(error) bool
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:     1,
		InitialInterval: 2 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
	}
}

// RetryWithExponentialBackoff runs fn up to MaxAttempts times, sleeping with
// exponential backoff between attempts. Failures rejected by ShouldRetry are
// returned immediately.
func RetryWithExponentialBackoff(ctx context.Context, config *RetryConfig, fn func() error) error {
	var lastErr error
	interval := config.InitialInterval

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if config.ShouldRetry != nil && !config.ShouldRetry(lastErr) {
			return lastErr
		}

		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
			interval = time.Duration(float64(interval) * config.Multiplier)
			if interval > config.MaxInterval {
				interval = config.MaxInterval
			}
		}
	}

	return lastErr
}

// RateLimiter is a token-bucket limiter used to keep the remote API under
// its request quota. It admits bursts up to rate and refills continuously
// so sustained throughput is rate tokens per interval.
type RateLimiter struct {
	rate     int
	interval time.Duration
	tokens   int
	lastTime time.Time
	mu       sync.Mutex
}

func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		interval: interval,
		tokens:   rate,
		lastTime: time.Now(),
	}
}

func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastTime)

	tokensToAdd := int(elapsed * time.Duration(rl.rate) / rl.interval)
	if tokensToAdd > 0 {
		rl.tokens += tokensToAdd
		if rl.tokens >= rl.rate {
			rl.tokens = rl.rate
			rl.lastTime = now
		} else {
			// Advance by the time the granted tokens account for, keeping
			// the fractional remainder for the next refill.
			rl.lastTime = rl.lastTime.Add(rl.interval * time.Duration(tokensToAdd) / time.Duration(rl.rate))
		}
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}

	return false
}

// Wait blocks until a token is available or the context is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	perToken := rl.interval / time.Duration(rl.rate)

	for {
		if rl.Allow() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(perToken):
		}
	}
}
