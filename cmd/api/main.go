// Package main is the entrypoint for the Versz Lyrics API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/versz/versz/internal/auth"
	"github.com/versz/versz/internal/cache"
	"github.com/versz/versz/internal/config"
	"github.com/versz/versz/internal/handler"
	"github.com/versz/versz/internal/keepalive"
	"github.com/versz/versz/internal/middleware"
	"github.com/versz/versz/internal/repository"
	"github.com/versz/versz/internal/server"
	"github.com/versz/versz/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	tokenService := auth.NewTokenService([]byte(cfg.SecretKey), cfg.TokenTTL)
	userService, err := service.NewUserService(repo, tokenService)
	if err != nil {
		logger.Error("failed to initialize user service", "error", err)
		os.Exit(1)
	}
	lyricsService := service.NewLyricsService(repo)
	shareService := service.NewShareService(repo, cacheClient, cfg.BaseURL)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo)
	authHandler := handler.NewAuthHandler(userService, logger)
	lyricsHandler := handler.NewLyricsHandler(lyricsService, logger)
	shareHandler := handler.NewShareHandler(shareService, logger)

	// Setup router
	r := setupRouter(h, healthHandler, authHandler, lyricsHandler, shareHandler, tokenService, repo, cfg, logger)

	// Create server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Start the backend keep-alive monitor; it is awaited at shutdown
	// before the pool closes.
	monitorCtx, cancelMonitor := context.WithCancel(ctx)
	defer cancelMonitor()

	monitor := keepalive.NewMonitor(repo, logger, cfg.KeepAliveInterval, cfg.KeepAliveRetryDelay)
	go func() {
		if err := monitor.Run(monitorCtx); err != nil {
			logger.Error("keepalive monitor error", "error", err)
		}
	}()
	srv.OnShutdown("keepalive", monitor.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

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
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	lyricsHandler *handler.LyricsHandler,
	shareHandler *handler.ShareHandler,
	tokenService *auth.TokenService,
	repo *repository.Repository,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoint (no auth required)
	r.Get("/health", healthHandler.Health)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Public endpoints
	r.Post("/register", authHandler.Register)
	r.Post("/token", authHandler.Token)
	r.Get("/share/{extension}", shareHandler.Get)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: tokenService,
		Users:  repo,
	}

	// Owner-scoped endpoints (require bearer token)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Get("/lyrics", lyricsHandler.List)
		r.Post("/lyrics", lyricsHandler.Create)
		r.Put("/lyrics/{id}", lyricsHandler.Update)
		r.Post("/share", shareHandler.Create)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
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
