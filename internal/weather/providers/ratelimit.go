package providers

import (
	"context"
	"fmt"

	"github.com/i474232898/weather-grpc-service/internal/weather"
	"golang.org/x/time/rate"
)

// RateLimitedProvider wraps a weather.Provider with a token bucket limiter.
type RateLimitedProvider struct {
	provider weather.Provider
	limiter  *rate.Limiter
	name     string
}

// NewRateLimitedProvider allows rps upstream calls per second with bursts of
// up to burst calls. rps may be fractional.
func NewRateLimitedProvider(provider weather.Provider, rps float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		name:     fmt.Sprintf("%s [Rate Limited]", provider.Name()),
	}
}

// Fetch waits for the limiter, or for ctx to be done, then forwards the call.
func (r *RateLimitedProvider) Fetch(ctx context.Context, q weather.Query) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait canceled: %w", weather.ErrTransport, err)
	}
	return r.provider.Fetch(ctx, q)
}

func (r *RateLimitedProvider) Name() string {
	return r.name
}

var _ weather.Provider = (*RateLimitedProvider)(nil)
