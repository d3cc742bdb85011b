package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/netznav/navigator/internal/dependencies/clock"
	"github.com/netznav/navigator/internal/dependencies/random"
	"github.com/netznav/navigator/internal/dispatch"
	"github.com/netznav/navigator/internal/services/room"
	"github.com/netznav/navigator/internal/services/session"
	"github.com/netznav/navigator/internal/storage"
	"github.com/netznav/navigator/internal/storage/memory"
	redisstorage "github.com/netznav/navigator/internal/storage/redis"
	"github.com/netznav/navigator/internal/transport/ws"
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

	// Services
	Registry *room.Registry
	Engine   *session.Engine

	// Transport
	Hub        *ws.Hub
	Dispatcher *dispatch.Dispatcher
	Socket     *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

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
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	registry := room.NewRegistry(store, clk, rnd, logger)
	engine := session.NewEngine(registry, logger)
	hub := ws.NewHub(logger)
	dispatcher := dispatch.New(engine, hub, logger)
	socket := ws.NewHandler(hub, dispatcher, logger)

	return &App{
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Registry:   registry,
		Engine:     engine,
		Hub:        hub,
		Dispatcher: dispatcher,
		Socket:     socket,
	}
}
