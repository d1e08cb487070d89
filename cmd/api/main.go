// Package main is the entrypoint for the placeshare API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/placeshare/placeshare/internal/asset"
	"github.com/placeshare/placeshare/internal/auth"
	"github.com/placeshare/placeshare/internal/cache"
	"github.com/placeshare/placeshare/internal/config"
	"github.com/placeshare/placeshare/internal/geocode"
	"github.com/placeshare/placeshare/internal/handler"
	"github.com/placeshare/placeshare/internal/metrics"
	"github.com/placeshare/placeshare/internal/middleware"
	"github.com/placeshare/placeshare/internal/repository"
	"github.com/placeshare/placeshare/internal/server"
	"github.com/placeshare/placeshare/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(registry)

	// Store
	var (
		store   repository.Store
		closers []func()
	)
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		repo, err := repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		closers = append(closers, repo.Close)
		store = repo
		logger.Info("connected to database")
	default:
		store = repository.NewMemStore()
		logger.Warn("using in-memory store; data is lost on restart")
	}

	// Cache (optional)
	var (
		cacheClient *cache.Cache
		limiter     middleware.RateLimiter
		cacheHealth handler.HealthChecker
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		closers = append(closers, func() { _ = cacheClient.Close() })
		limiter = cacheClient
		cacheHealth = cacheClient
		logger.Info("connected to Redis")
	}

	// Geocoding
	var resolver geocode.Resolver = geocode.NewArcGISClient(cfg.GeocoderURL, cfg.GeocoderToken, cfg.GeocoderTimeout, logger, recorder)
	if cacheClient != nil {
		resolver = geocode.NewCachedResolver(resolver, cacheClient, cfg.GeocoderCacheTTL, cfg.GeocoderNegativeCacheTTL, logger, recorder)
	}

	// Assets
	assets, err := asset.NewManager(cfg.UploadDir, logger, recorder)
	if err != nil {
		logger.Error("failed to prepare upload directory", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	// Services
	placeService := service.NewPlaceService(store, resolver, assets, nil, logger, recorder)
	userService := service.NewUserService(store)
	// The API only verifies tokens; cmd/seed issues them.
	tokens := auth.NewTokens(cfg.JWTSecret, 0, nil)

	router := server.NewRouter(server.RouterConfig{
		Logger:   logger,
		Places:   handler.NewPlaceHandler(placeService, assets, cfg.MaxUploadSize, logger),
		Users:    handler.NewUserHandler(userService, logger),
		Health:   handler.NewHealthHandler(store, cacheHealth, logger),
		Images:   handler.NewImageHandler(assets.ImagesDir()),
		Metrics:  handler.NewMetricsHandler(registry),
		Verifier: tokens,
		RateLimit: middleware.RateLimitConfig{
			Logger:         logger,
			Limiter:        limiter,
			Metrics:        recorder,
			Enabled:        cfg.RateLimitEnabled,
			PrincipalRPM:   cfg.RateLimitRPM,
			PrincipalBurst: cfg.RateLimitBurst,
			IPRPS:          cfg.RateLimitIPRPS,
			IPBurst:        cfg.RateLimitIPBurst,
		},
		CORS:          corsConfig(cfg),
		IsDevelopment: cfg.IsDevelopment(),
	})

	srv := server.New(
		router,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	for _, closeFn := range closers {
		closeFn := closeFn
		srv.OnShutdown("dependency", func(context.Context) error {
			closeFn()
			return nil
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store", cfg.StoreDriver,
		"geocode_cache", cacheClient != nil,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	c.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	return c
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
