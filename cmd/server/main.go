package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/anagrams/internal/api"
	"github.com/mcoot/anagrams/internal/config"
	"github.com/mcoot/anagrams/internal/factory"
	redisstorage "github.com/mcoot/anagrams/internal/storage/redis"
)

func main() {
	// Local overrides; real environment variables win
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Build factory config
	factoryCfg := factory.Config{
		DictionaryPath: cfg.DictionaryPath,
		Logger:         logger,
		StorageType:    cfg.StorageType,
		DevMode:        cfg.DevMode,
		Retention:      cfg.GameRetention,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create application factory
	app, err := factory.New(ctx, factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	if cfg.DevMode {
		logger.Warn("dev mode enabled: tiles are drawn in order and turns are not enforced")
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Registry:       app.Registry,
		GameController: app.GameController,
		HubManager:     app.HubManager,
		Broadcaster:    app.Broadcaster,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	go runCleanup(ctx, app, cfg.CleanupInterval, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// Event streams only end when their hub closes
		app.HubManager.Close()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// runCleanup evicts abandoned games and idle hubs until ctx is done
func runCleanup(ctx context.Context, app *factory.App, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted, err := app.Registry.CleanupAbandoned(ctx)
			if err != nil {
				logger.Error("game cleanup failed", slog.String("error", err.Error()))
			}
			hubs := app.HubManager.CleanupEmptyHubs()
			if evicted > 0 || hubs > 0 {
				logger.Info("cleanup complete", slog.Int("games_evicted", evicted), slog.Int("hubs_removed", hubs))
			}
		}
	}
}
