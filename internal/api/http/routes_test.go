package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-grpc-service/internal/weather"
)

type fakeService struct {
	resp weather.WeatherDataResponse
	err  error
	last weather.WeatherDataRequest
}

func (f *fakeService) GetWeatherData(ctx context.Context, req weather.WeatherDataRequest) (weather.WeatherDataResponse, error) {
	f.last = req
	return f.resp, f.err
}

func newTestApp(svc WeatherFetcher) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": true, "message": err.Error()})
		},
	})
	RegisterRoutes(app, svc)
	return app
}

// TestWeatherQueryValidation verifies that lat and lon are required numbers.
func TestWeatherQueryValidation(t *testing.T) {
	app := newTestApp(&fakeService{})

	for _, target := range []string{
		"/api/v1/weather",
		"/api/v1/weather?lat=23.7",
		"/api/v1/weather?lat=north&lon=1",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestGetWeather(t *testing.T) {
	svc := &fakeService{resp: weather.WeatherDataResponse{
		Current:  &weather.CurrentWeather{Temp: 30.5, Humidity: 80},
		Minutely: []weather.MinuteForecast{},
		Hourly:   []weather.HourlyForecast{},
		Daily:    []weather.DailyForecast{},
		Alerts:   []weather.WeatherAlert{},
	}}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather?lat=23.777176&lon=-90.399452&exclude=minutely,,alerts&units=imperial&lang=es", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, weather.WeatherDataRequest{
		Coordinates: weather.Coordinates{Latitude: 23.777176, Longitude: -90.399452},
		Exclude:     []string{"minutely", "alerts"},
		Units:       "imperial",
		Language:    "es",
	}, svc.last)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	current, ok := body["current"].(map[string]interface{})
	require.True(t, ok, "missing current in %v", body)
	assert.Equal(t, 30.5, current["temp"])
	assert.Equal(t, []interface{}{}, body["hourly"])
}

func TestPostWeather(t *testing.T) {
	svc := &fakeService{}
	app := newTestApp(svc)

	payload := `{"coordinates":{"latitude":51.5,"longitude":-0.12},"exclude":["daily"],"units":"standard","language":"de"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/weather", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, weather.WeatherDataRequest{
		Coordinates: weather.Coordinates{Latitude: 51.5, Longitude: -0.12},
		Exclude:     []string{"daily"},
		Units:       "standard",
		Language:    "de",
	}, svc.last)
}

func TestWeatherErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"upstream error", &weather.UpstreamError{Code: "400", Message: "invalid coordinates"}, http.StatusBadRequest, "invalid coordinates"},
		{"translation error", weather.ErrTranslation, http.StatusInternalServerError, "failed to fetch weather data"},
		{"transport error", errors.Join(weather.ErrTransport, errors.New("dial tcp: refused")), http.StatusInternalServerError, "failed to fetch weather data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeService{err: tt.err})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/weather?lat=1&lon=2", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(raw), tt.wantMsg)
		})
	}
}
