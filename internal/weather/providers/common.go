package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour. MaxRetries of zero
// disables retrying.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// maxBodyBytes caps the size of an upstream document.
const maxBodyBytes = 8 << 20

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
	errCallerGone    = errors.New("request abandoned by caller")
)

// breakerSuccess is the gobreaker IsSuccessful hook. A call abandoned through
// its own context is not an upstream failure.
func breakerSuccess(err error) bool {
	return err == nil || errors.Is(err, errCallerGone)
}

// doRequestWithResilience executes the HTTP request behind a circuit breaker,
// retrying 429 and 5xx responses with exponential backoff. Any other status is
// returned to the caller together with the body, since the upstream reports
// request errors in-band.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (int, []byte, error) {
	if cfg.Client == nil {
		return 0, nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || (cfg.Backoff.MaxRetries > 0 && cfg.Backoff.InitialInterval <= 0) {
		return 0, nil, errInvalidConfig
	}

	type result struct {
		status int
		body   []byte
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return 0, nil, err
		}

		out, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				if ctx.Err() != nil {
					return nil, fmt.Errorf("%w: %w", errCallerGone, execErr)
				}
				return nil, execErr
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			}

			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			if readErr != nil {
				if ctx.Err() != nil {
					return nil, fmt.Errorf("%w: %w", errCallerGone, readErr)
				}
				return nil, fmt.Errorf("failed to read response body: %w", readErr)
			}
			return result{status: resp.StatusCode, body: body}, nil
		})

		if err == nil {
			res, ok := out.(result)
			if !ok {
				return 0, nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return res.status, res.body, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		if attempt >= cfg.Backoff.MaxRetries || !retryable(err) {
			return 0, nil, err
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

func retryable(err error) bool {
	return errors.Is(err, errRateLimited) || errors.Is(err, errServerError)
}
