package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/AwadhDhoot23/AI-RESUME-ANALYZER/internal/ai"
)

// NewPerMinute returns a limiter admitting requestsPerMinute calls per minute
// with no burst beyond a single call.
func NewPerMinute(requestsPerMinute int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// RateLimitedProvider is a decorator that waits for the limiter before
// delegating to the wrapped LLMProvider.
type RateLimitedProvider struct {
	inner   ai.LLMProvider
	limiter *rate.Limiter
}

// NewRateLimitedProvider wraps an LLMProvider with a shared limiter.
func NewRateLimitedProvider(inner ai.LLMProvider, limiter *rate.Limiter) *RateLimitedProvider {
	return &RateLimitedProvider{
		inner:   inner,
		limiter: limiter,
	}
}

// Complete waits for the rate limiter to allow a request, then delegates to
// the wrapped provider.
func (p *RateLimitedProvider) Complete(ctx context.Context, req ai.Request) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm rate limiter wait: %w", err)
	}
	return p.inner.Complete(ctx, req)
}
