package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned when no upstream credential is configured.
var ErrMissingAPIKey = errors.New("OPENWEATHER_API_KEY is not set")

type AppConfig struct {
	OpenWeatherAPIKey string `validate:"required"`
	OneCallURL        string `validate:"required,url"`

	GRPCPort string `validate:"required,numeric"`
	// HTTPPort is the gateway port; empty disables the gateway.
	HTTPPort string `validate:"omitempty,numeric"`

	// HTTPTimeout bounds every outbound upstream call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// WorkerPoolSize is the maximum number of RPCs served concurrently.
	WorkerPoolSize int `validate:"min=1"`

	// ShutdownGrace is how long in-flight RPCs may run after a shutdown signal.
	ShutdownGrace time.Duration `validate:"gte=0"`

	UpstreamMaxRetries int     `validate:"min=0"`
	UpstreamRPS        float64 `validate:"gte=0"` // 0 = unlimited
	UpstreamBurst      int     `validate:"min=1"`

	// Upstream probe; ProbeInterval of 0 disables it.
	ProbeInterval time.Duration `validate:"gte=0"`
	ProbeLat      float64
	ProbeLon      float64
}

// fileConfig is the YAML view of AppConfig; durations are written as strings ("10s").
type fileConfig struct {
	OpenWeatherAPIKey  string   `yaml:"openweather_api_key"`
	OneCallURL         string   `yaml:"onecall_url"`
	GRPCPort           string   `yaml:"grpc_port"`
	HTTPPort           *string  `yaml:"http_port"`
	HTTPTimeout        string   `yaml:"http_timeout"`
	WorkerPoolSize     int      `yaml:"worker_pool_size"`
	ShutdownGrace      string   `yaml:"shutdown_grace"`
	UpstreamMaxRetries int      `yaml:"upstream_max_retries"`
	UpstreamRPS        float64  `yaml:"upstream_rps"`
	UpstreamBurst      int      `yaml:"upstream_burst"`
	ProbeInterval      string   `yaml:"probe_interval"`
	ProbeLat           *float64 `yaml:"probe_lat"`
	ProbeLon           *float64 `yaml:"probe_lon"`
}

var validate = validator.New()

// Default returns the configuration used when nothing is overridden.
func Default() *AppConfig {
	return &AppConfig{
		OneCallURL:     "https://api.openweathermap.org/data/3.0/onecall",
		GRPCPort:       "50051",
		HTTPPort:       "8080",
		HTTPTimeout:    10 * time.Second,
		WorkerPoolSize: 10,
		ShutdownGrace:  10 * time.Second,
		UpstreamBurst:  1,
		ProbeLat:       23.777176,
		ProbeLon:       -90.399452,
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and the environment, in increasing order of precedence.
func Load() (*AppConfig, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.OpenWeatherAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (cfg *AppConfig) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.OpenWeatherAPIKey, fc.OpenWeatherAPIKey)
	setString(&cfg.OneCallURL, fc.OneCallURL)
	setString(&cfg.GRPCPort, fc.GRPCPort)
	if fc.HTTPPort != nil {
		cfg.HTTPPort = *fc.HTTPPort
	}
	if fc.WorkerPoolSize != 0 {
		cfg.WorkerPoolSize = fc.WorkerPoolSize
	}
	if fc.UpstreamMaxRetries != 0 {
		cfg.UpstreamMaxRetries = fc.UpstreamMaxRetries
	}
	if fc.UpstreamRPS != 0 {
		cfg.UpstreamRPS = fc.UpstreamRPS
	}
	if fc.UpstreamBurst != 0 {
		cfg.UpstreamBurst = fc.UpstreamBurst
	}
	if fc.ProbeLat != nil {
		cfg.ProbeLat = *fc.ProbeLat
	}
	if fc.ProbeLon != nil {
		cfg.ProbeLon = *fc.ProbeLon
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"http_timeout", fc.HTTPTimeout, &cfg.HTTPTimeout},
		{"shutdown_grace", fc.ShutdownGrace, &cfg.ShutdownGrace},
		{"probe_interval", fc.ProbeInterval, &cfg.ProbeInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s in %s: %w", d.name, path, err)
		}
		*d.dst = v
	}
	return nil
}

func (cfg *AppConfig) applyEnv() error {
	setString(&cfg.OpenWeatherAPIKey, os.Getenv("OPENWEATHER_API_KEY"))
	setString(&cfg.OneCallURL, os.Getenv("ONECALL_URL"))
	setString(&cfg.GRPCPort, os.Getenv("GRPC_PORT"))
	if v, ok := os.LookupEnv("HTTP_PORT"); ok {
		cfg.HTTPPort = v
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return err
	}
	if cfg.ShutdownGrace, err = getenvDuration("SHUTDOWN_GRACE", cfg.ShutdownGrace); err != nil {
		return err
	}
	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", cfg.ProbeInterval); err != nil {
		return err
	}

	if cfg.WorkerPoolSize, err = getenvInt("WORKER_POOL_SIZE", cfg.WorkerPoolSize); err != nil {
		return err
	}
	if cfg.UpstreamMaxRetries, err = getenvInt("UPSTREAM_MAX_RETRIES", cfg.UpstreamMaxRetries); err != nil {
		return err
	}
	if cfg.UpstreamBurst, err = getenvInt("UPSTREAM_BURST", cfg.UpstreamBurst); err != nil {
		return err
	}
	if cfg.UpstreamRPS, err = getenvFloat("UPSTREAM_RPS", cfg.UpstreamRPS); err != nil {
		return err
	}
	if cfg.ProbeLat, err = getenvFloat("PROBE_LAT", cfg.ProbeLat); err != nil {
		return err
	}
	if cfg.ProbeLon, err = getenvFloat("PROBE_LON", cfg.ProbeLon); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
