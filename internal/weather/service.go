package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Service composes the request adapter, the upstream provider and the
// response translator. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	provider Provider
}

// NewService creates a new Service.
func NewService(provider Provider) *Service {
	return &Service{
		provider: provider,
	}
}

// GetWeatherData fetches and translates the weather report for req.
func (s *Service) GetWeatherData(ctx context.Context, req WeatherDataRequest) (WeatherDataResponse, error) {
	if s.provider == nil {
		return WeatherDataResponse{}, fmt.Errorf("%w: no weather provider configured", ErrTransport)
	}

	q := NewQuery(req)
	log.Printf("DEBUG: GetWeatherData lat=%v lon=%v units=%s lang=%s exclude=%v", q.Lat, q.Lon, q.Units, q.Lang, q.Exclude)

	body, err := s.provider.Fetch(ctx, q)
	if err != nil {
		if !errors.Is(err, ErrTransport) {
			err = fmt.Errorf("%w: %w", ErrTransport, err)
		}
		log.Printf("ERROR: provider %s fetch failed: %v", s.provider.Name(), err)
		return WeatherDataResponse{}, err
	}

	resp, err := Translate(body)
	if err != nil {
		log.Printf("ERROR: provider %s: %v", s.provider.Name(), err)
		return WeatherDataResponse{}, err
	}
	return resp, nil
}
