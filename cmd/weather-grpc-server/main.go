package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"google.golang.org/grpc"

	grpcapi "github.com/i474232898/weather-grpc-service/internal/api/grpc"
	httpapi "github.com/i474232898/weather-grpc-service/internal/api/http"
	"github.com/i474232898/weather-grpc-service/internal/config"
	"github.com/i474232898/weather-grpc-service/internal/scheduler"
	"github.com/i474232898/weather-grpc-service/internal/weather"
	"github.com/i474232898/weather-grpc-service/internal/weather/providers"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// A missing credential is fatal: the process never starts serving.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Outbound client; the timeout keeps a stalled upstream from blocking a worker forever.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var provider weather.Provider = providers.NewOneCallProvider(
		httpClient,
		cfg.OpenWeatherAPIKey,
		providers.WithBaseURL(cfg.OneCallURL),
		providers.WithMaxRetries(cfg.UpstreamMaxRetries),
	)
	if cfg.UpstreamRPS > 0 {
		provider = providers.NewRateLimitedProvider(provider, cfg.UpstreamRPS, cfg.UpstreamBurst)
		log.Printf("INFO: upstream rate limited to %.2f req/s (burst %d)", cfg.UpstreamRPS, cfg.UpstreamBurst)
	}

	service := weather.NewService(provider)

	grpcServer := grpcapi.NewServer(grpcapi.NewHandler(service), cfg.WorkerPoolSize)

	sched := scheduler.New(
		weather.Coordinates{Latitude: cfg.ProbeLat, Longitude: cfg.ProbeLon},
		cfg.ProbeInterval,
		service,
		grpcServer.SetServing,
	)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatalf("failed to listen on :%s: %v", cfg.GRPCPort, err)
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Printf("grpc server stopped: %v", err)
		}
	}()

	var app *fiber.App
	if cfg.HTTPPort != "" {
		app = newGateway(service, sched)
		go func() {
			if err := app.Listen(":" + cfg.HTTPPort); err != nil {
				log.Printf("fiber server stopped: %v", err)
			}
		}()
	}

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Println("INFO: shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if app != nil {
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	}
	grpcServer.Shutdown(shutdownCtx)
	log.Println("INFO: shutdown complete")
}

func newGateway(service *weather.Service, sched *scheduler.Scheduler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weather-grpc-service",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-grpc-service",
			"upstream": sched.Status(),
		})
	})

	httpapi.RegisterRoutes(app, service)
	return app
}
