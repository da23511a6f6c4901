package httpapi

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-grpc-service/internal/weather"
)

var validate = validator.New()

// WeatherFetcher is the part of weather.Service the gateway needs.
type WeatherFetcher interface {
	GetWeatherData(ctx context.Context, req weather.WeatherDataRequest) (weather.WeatherDataResponse, error)
}

// RegisterRoutes wires the HTTP gateway handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service WeatherFetcher) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		req, err := parseWeatherQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond(c, service, req)
	})

	v1.Post("/weather", func(c *fiber.Ctx) error {
		var req weather.WeatherDataRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		return respond(c, service, req)
	})
}

func respond(c *fiber.Ctx, service WeatherFetcher, req weather.WeatherDataRequest) error {
	resp, err := service.GetWeatherData(c.UserContext(), req)
	if err != nil {
		var upErr *weather.UpstreamError
		if errors.As(err, &upErr) {
			return fiber.NewError(fiber.StatusBadRequest, upErr.Message)
		}
		log.Printf("ERROR: gateway: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
	return c.JSON(resp)
}

// weatherQuery holds the query parameters of GET /api/v1/weather.
type weatherQuery struct {
	Lat      string `validate:"required,numeric"`
	Lon      string `validate:"required,numeric"`
	Exclude  string
	Units    string
	Language string
}

func parseWeatherQuery(c *fiber.Ctx) (weather.WeatherDataRequest, error) {
	q := weatherQuery{
		Lat:      c.Query("lat"),
		Lon:      c.Query("lon"),
		Exclude:  c.Query("exclude"),
		Units:    c.Query("units"),
		Language: c.Query("lang"),
	}
	if err := validate.Struct(q); err != nil {
		return weather.WeatherDataRequest{}, err
	}

	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return weather.WeatherDataRequest{}, err
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return weather.WeatherDataRequest{}, err
	}

	return weather.WeatherDataRequest{
		Coordinates: weather.Coordinates{Latitude: lat, Longitude: lon},
		Exclude:     splitList(q.Exclude),
		Units:       q.Units,
		Language:    q.Language,
	}, nil
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
