package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/i474232898/weather-grpc-service/internal/weather"
	"github.com/sony/gobreaker"
)

// DefaultOneCallURL is the OpenWeatherMap One Call 3.0 endpoint.
const DefaultOneCallURL = "https://api.openweathermap.org/data/3.0/onecall"

// OneCallProvider implements the weather.Provider interface for the
// OpenWeatherMap One Call API.
type OneCallProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// Option customizes a OneCallProvider.
type Option func(*OneCallProvider)

// WithBaseURL overrides the upstream endpoint.
func WithBaseURL(u string) Option {
	return func(p *OneCallProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithMaxRetries enables backoff retries for 429 and 5xx responses.
func WithMaxRetries(n int) Option {
	return func(p *OneCallProvider) {
		p.httpCfg.Backoff.MaxRetries = n
	}
}

// WithBackoffIntervals sets the initial and maximum backoff delay.
func WithBackoffIntervals(initial, max time.Duration) Option {
	return func(p *OneCallProvider) {
		p.httpCfg.Backoff.InitialInterval = initial
		p.httpCfg.Backoff.MaxInterval = max
	}
}

// NewOneCallProvider creates a provider that sends apiKey with every call.
// client must carry a timeout; a nil client gets a 10 second one.
func NewOneCallProvider(client *http.Client, apiKey string, opts ...Option) *OneCallProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         "openweather-onecall",
		MaxRequests:  5,
		Interval:     1 * time.Minute,
		Timeout:      2 * time.Minute,
		IsSuccessful: breakerSuccess,
	})

	p := &OneCallProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: DefaultOneCallURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      0,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OneCallProvider) Name() string {
	return p.name
}

// Fetch issues one GET for q and returns the response body. Error documents
// (4xx with a JSON body) are returned as bodies for the translator to classify.
func (p *OneCallProvider) Fetch(ctx context.Context, q weather.Query) ([]byte, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: openweather api key is not configured", weather.ErrTransport)
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		u := fmt.Sprintf("%s?%s", p.baseURL, q.Values(p.apiKey).Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	_, body, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", weather.ErrTransport, p.name, err)
	}
	return body, nil
}

var _ weather.Provider = (*OneCallProvider)(nil)
