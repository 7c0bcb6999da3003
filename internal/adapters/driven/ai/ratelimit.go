package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragline-cli/internal/core/ports/driven"
)

// Ensure rateLimitedLLM implements the interface.
var _ driven.LLMService = (*rateLimitedLLM)(nil)

// rateLimitedLLM throttles Chat calls to a sustained requests-per-
// minute rate with a burst of one. Ping is never throttled.
type rateLimitedLLM struct {
	inner   driven.LLMService
	limiter *rate.Limiter
}

func newRateLimitedLLM(inner driven.LLMService, requestsPerMinute int) *rateLimitedLLM {
	return &rateLimitedLLM{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

func (r *rateLimitedLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.inner.Chat(ctx, messages, opts)
}

func (r *rateLimitedLLM) ModelName() string {
	return r.inner.ModelName()
}

func (r *rateLimitedLLM) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

func (r *rateLimitedLLM) Close() error {
	return r.inner.Close()
}
