package marketdata

import (
	"context"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// RateLimiter implements a token-bucket rate limiter that replenishes tokens
// at a fixed rate. It is the single shared-resource gate in front of a data
// provider: concurrent scan workers all wait on the same bucket.
type RateLimiter struct {
	rate     float64 // tokens per second
	tokens   float64
	lastTime time.Time
	mu       sync.Mutex
}

// NewRateLimiter creates a RateLimiter that allows perMinute operations per
// minute.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		rate:     float64(perMinute) / 60.0,
		tokens:   1, // start with one token available
		lastTime: time.Now(),
	}
}

// Wait blocks until a rate-limit token is available or the context is
// cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(rl.lastTime).Seconds()
		rl.tokens += elapsed * rl.rate

		if rl.tokens > 1 {
			rl.tokens = 1
		}

		rl.lastTime = now

		if rl.tokens >= 1 {
			rl.tokens--
			rl.mu.Unlock()

			return nil
		}
		rl.mu.Unlock()

		// Wait a short interval before checking again.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// RateLimitedProvider wraps a Provider with rate limiting and retry with
// exponential backoff. Transient provider failures are retried; the last
// error is returned once attempts are exhausted.
type RateLimitedProvider struct {
	inner       Provider
	limiter     *RateLimiter
	maxAttempts int
	baseDelay   time.Duration
}

// RateLimitConfig controls the wrapper. Zero values fall back to defaults:
// 60 requests per minute, 3 attempts, 500ms base delay.
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" validate:"min=0"`
	MaxAttempts       int           `yaml:"max_attempts" validate:"min=0"`
	BaseDelay         time.Duration `yaml:"base_delay"`
}

// NewRateLimitedProvider wraps inner with the given limits.
func NewRateLimitedProvider(inner Provider, config RateLimitConfig) *RateLimitedProvider {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 60
	}

	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}

	if config.BaseDelay <= 0 {
		config.BaseDelay = 500 * time.Millisecond
	}

	return &RateLimitedProvider{
		inner:       inner,
		limiter:     NewRateLimiter(config.RequestsPerMinute),
		maxAttempts: config.MaxAttempts,
		baseDelay:   config.BaseDelay,
	}
}

// Fetch implements Provider.
func (p *RateLimitedProvider) Fetch(ctx context.Context, symbol string, timeframe types.Timeframe, lookback int) (*types.Series, error) {
	var (
		series *types.Series
		err    error
	)

	delay := p.baseDelay

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if waitErr := p.limiter.Wait(ctx); waitErr != nil {
			return nil, errors.NewDataProviderError(symbol, string(timeframe), waitErr)
		}

		series, err = p.inner.Fetch(ctx, symbol, timeframe, lookback)
		if err == nil {
			return series, nil
		}

		// Don't sleep after the last failed attempt.
		if attempt < p.maxAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, errors.NewDataProviderError(symbol, string(timeframe), ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return nil, err
}
