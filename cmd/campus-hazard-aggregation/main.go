package main

import (
	"context"
	"log"
	"math/rand/v2"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"

	"github.com/campuswatch/campus-hazard-aggregation/internal/aggregate"
	"github.com/campuswatch/campus-hazard-aggregation/internal/airquality"
	httpapi "github.com/campuswatch/campus-hazard-aggregation/internal/api/http"
	"github.com/campuswatch/campus-hazard-aggregation/internal/cache"
	"github.com/campuswatch/campus-hazard-aggregation/internal/config"
	"github.com/campuswatch/campus-hazard-aggregation/internal/notices"
	"github.com/campuswatch/campus-hazard-aggregation/internal/observability"
	"github.com/campuswatch/campus-hazard-aggregation/internal/poller"
)

func main() {
	// Load configuration (.env is handled inside Load).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Shared HTTP client for outbound source calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Redis when configured, in-memory otherwise.
	var store cache.Cache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedis(cfg.RedisAddr)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			cancel()
			log.Fatalf("failed to reach redis at %s: %v", cfg.RedisAddr, err)
		}
		cancel()
		defer redisCache.Close()
		store = redisCache
		slogger.Info("using redis cache", "addr", cfg.RedisAddr)
	} else {
		store = cache.NewMemory(clock)
		slogger.Info("using in-memory cache")
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))

	// Source adapters with resilience (backoff + circuit breaker).
	sensor := airquality.NewAdapter(cfg, httpClient, store, clock, rng, slogger, metrics)
	noticeFeed := notices.NewAdapter(cfg, httpClient, store, clock, slogger, metrics)

	// Core service joining both sources.
	service := aggregate.NewService(sensor, noticeFeed, slogger)

	board := httpapi.NewAdvisoryBoard(clock)

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "campus-hazard-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
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

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "campus-hazard-aggregation",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, board, cfg.MapLayers)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Background poller exercising the snapshot endpoint like a client.
	p := poller.New(cfg.PollTargetURL, cfg.PollInterval, httpClient, slogger, metrics)
	if err := p.Start(); err != nil {
		log.Fatalf("failed to start poller: %v", err)
	}
	defer p.Stop()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
