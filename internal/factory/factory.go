package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/anagrams/internal/dependencies/clock"
	"github.com/mcoot/anagrams/internal/dependencies/idgen"
	"github.com/mcoot/anagrams/internal/dependencies/random"
	"github.com/mcoot/anagrams/internal/model"
	"github.com/mcoot/anagrams/internal/realtime"
	"github.com/mcoot/anagrams/internal/services/dictionary"
	"github.com/mcoot/anagrams/internal/services/endgame"
	"github.com/mcoot/anagrams/internal/services/game"
	"github.com/mcoot/anagrams/internal/services/registry"
	"github.com/mcoot/anagrams/internal/services/tiles"
	"github.com/mcoot/anagrams/internal/storage"
	"github.com/mcoot/anagrams/internal/storage/memory"
	redisstorage "github.com/mcoot/anagrams/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    idgen.Generator

	// Services
	DictionaryService *dictionary.Service
	Registry          *registry.Registry
	Timers            *endgame.Timers
	GameController    *game.Controller
	HubManager        *realtime.HubManager
	Broadcaster       *realtime.Broadcaster
}

// Config holds configuration for the application factory
type Config struct {
	// DictionaryPath is the path to the dictionary file (optional)
	// If empty, dictionary must be loaded manually
	DictionaryPath string
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DevMode draws tiles in alphabetical order and lets anyone draw
	DevMode bool
	// Retention is how long an untouched game lives (optional)
	// If zero, defaults to registry.DefaultRetention
	Retention time.Duration
}

// options are the settings that survive into wiring
type options struct {
	devMode   bool
	retention time.Duration
	limits    model.Limits
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisCfg := *cfg.RedisConfig
		if cfg.Retention > 0 && redisCfg.GameTTL < cfg.Retention {
			redisCfg.GameTTL = 2 * cfg.Retention
		}
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	opts := options{
		devMode:   cfg.DevMode,
		retention: cfg.Retention,
		limits:    model.DefaultLimits(),
	}
	app := newWithDependencies(store, clock.New(), random.New(), idgen.New(), opts, logger)

	if cfg.DictionaryPath != "" {
		if err := app.DictionaryService.Load(ctx, cfg.DictionaryPath); err != nil {
			return nil, fmt.Errorf("loading dictionary: %w", err)
		}
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	ids idgen.Generator,
	opts options,
	logger *slog.Logger,
) *App {
	component := func(name string) *slog.Logger {
		return logger.With(slog.String("component", name))
	}

	var drawer tiles.Drawer = tiles.NewRandomDrawer(rnd)
	if opts.devMode {
		drawer = tiles.NewCyclingDrawer()
	}

	dictService := dictionary.New(store, component("dictionary"))
	reg := registry.New(store, ids, clk, component("registry"), opts.limits, opts.retention)
	timers := endgame.New(clk, component("endgame"))
	hubManager := realtime.NewHubManager(logger)
	broadcaster := realtime.NewBroadcaster(hubManager, logger)
	gameController := game.NewController(
		reg,
		dictService,
		drawer,
		timers,
		broadcaster,
		component("game"),
		game.Options{SkipTurnCheck: opts.devMode},
	)

	// Evicted games take their subscribers and any pending timer with them
	reg.OnEvict(func(id model.GameID) {
		timers.Cancel(id)
		broadcaster.GameEvicted(id)
	})

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		IDs:               ids,
		DictionaryService: dictService,
		Registry:          reg,
		Timers:            timers,
		GameController:    gameController,
		HubManager:        hubManager,
		Broadcaster:       broadcaster,
	}
}

// Close releases the app's connections and disconnects all subscribers
func (a *App) Close() error {
	a.HubManager.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
