package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-grpc-service/internal/weather"
)

// probeTimeout bounds a single probe call.
const probeTimeout = 30 * time.Second

// WeatherFetcher is the part of weather.Service the prober needs.
type WeatherFetcher interface {
	GetWeatherData(ctx context.Context, req weather.WeatherDataRequest) (weather.WeatherDataResponse, error)
}

// Status is the outcome of the most recent upstream probe.
type Status struct {
	Healthy   bool      `json:"healthy"`
	LastCheck time.Time `json:"lastCheck,omitempty"`
	LastError string    `json:"lastError,omitempty"`
}

// Scheduler periodically probes the upstream provider with a minimal request
// and records whether it answered.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   WeatherFetcher
	probe     weather.WeatherDataRequest
	interval  time.Duration
	onChange  func(healthy bool)

	mu     sync.RWMutex
	status Status
}

// New creates a Scheduler probing coords every interval. onChange, when not
// nil, is called after each probe with its result.
func New(coords weather.Coordinates, interval time.Duration, service WeatherFetcher, onChange func(healthy bool)) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		service:   service,
		probe: weather.WeatherDataRequest{
			Coordinates: coords,
			Exclude:     []string{"minutely", "hourly", "daily", "alerts"},
		},
		interval: interval,
		onChange: onChange,
		// Assume healthy until a probe says otherwise.
		status: Status{Healthy: true},
	}
}

// Start schedules the probe job and starts the underlying scheduler. A zero
// interval disables probing.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: upstream probe disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce performs one probe and records its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	_, err := s.service.GetWeatherData(ctx, s.probe)

	st := Status{Healthy: err == nil, LastCheck: time.Now().UTC()}
	if err != nil {
		st.LastError = err.Error()
		log.Printf("scheduler: upstream probe failed: %v", err)
	}

	s.mu.Lock()
	s.status = st
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(st.Healthy)
	}
	return st
}

// Status returns the outcome of the most recent probe.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
