package weather

import (
	"context"
)

// Provider abstracts the upstream One Call endpoint. Fetch performs exactly one
// logical upstream call and returns the raw response body; failures to reach
// the provider are reported wrapped in ErrTransport.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]byte, error)
}
