package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/arise-roster/internal/config"
	"github.com/mcoot/arise-roster/internal/dependencies/clock"
	"github.com/mcoot/arise-roster/internal/dependencies/random"
	"github.com/mcoot/arise-roster/internal/realtime"
	"github.com/mcoot/arise-roster/internal/services/accounts"
	"github.com/mcoot/arise-roster/internal/services/activity"
	"github.com/mcoot/arise-roster/internal/services/auth"
	"github.com/mcoot/arise-roster/internal/services/roster"
	"github.com/mcoot/arise-roster/internal/services/spreadsheet"
	"github.com/mcoot/arise-roster/internal/storage"
	"github.com/mcoot/arise-roster/internal/storage/memory"
	pgstorage "github.com/mcoot/arise-roster/internal/storage/postgres"
	redisstorage "github.com/mcoot/arise-roster/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypePostgres = config.StoragePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage     storage.Storage
	StorageType string

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Hasher auth.PasswordHasher

	// Services
	AuthService        *auth.Service
	AccountsService    *accounts.Service
	RosterService      *roster.Service
	ActivityService    *activity.Service
	SpreadsheetService *spreadsheet.Service
	Hub                *realtime.Hub
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds PostgreSQL settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config
}

// ConfigFrom translates the loaded application configuration
func ConfigFrom(c *config.Config, logger *slog.Logger) Config {
	cfg := Config{
		AuthConfig:  auth.Config{SessionDuration: c.Auth.SessionDuration},
		Logger:      logger,
		StorageType: c.Storage.Type,
	}
	switch c.Storage.Type {
	case StorageTypeRedis:
		cfg.RedisConfig = &redisstorage.Config{
			URL:          c.Storage.Redis.URL,
			PoolSize:     c.Storage.Redis.PoolSize,
			MinIdleConns: c.Storage.Redis.MinIdleConns,
			KeyPrefix:    c.Storage.Redis.KeyPrefix,
		}
	case StorageTypePostgres:
		cfg.PostgresConfig = &pgstorage.Config{
			URL:             c.Storage.Postgres.URL,
			MaxConns:        c.Storage.Postgres.MaxConns,
			MinConns:        c.Storage.Postgres.MinConns,
			MaxConnLifetime: c.Storage.Postgres.MaxConnLifetime,
			MaxConnIdleTime: c.Storage.Postgres.MaxConnIdleTime,
		}
	}
	return cfg
}

// New creates a new application with all dependencies wired. The realtime
// hub is not started; call Start.
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
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		store = redisStore
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := pgstorage.New(ctx, *cfg.PostgresConfig, logger)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()
	hasher := auth.BcryptHasher{Cost: bcrypt.DefaultCost}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	app := newWithDependencies(store, clk, rnd, hasher, authCfg, logger)
	app.StorageType = storageType
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	hasher auth.PasswordHasher,
	authCfg auth.Config,
	logger *slog.Logger,
) *App {
	hub := realtime.NewHub(logger)
	activityService := activity.New(store, clk, logger)
	authService := auth.New(store, hasher, clk, authCfg, logger)
	accountsService := accounts.New(store, hasher, hub, activityService, clk, logger)
	rosterService := roster.New(store, hub, activityService, clk, rnd, logger)
	spreadsheetService := spreadsheet.New(rosterService, activityService, clk, logger)

	return &App{
		Storage:            store,
		StorageType:        StorageTypeMemory,
		Clock:              clk,
		Random:             rnd,
		Hasher:             hasher,
		AuthService:        authService,
		AccountsService:    accountsService,
		RosterService:      rosterService,
		ActivityService:    activityService,
		SpreadsheetService: spreadsheetService,
		Hub:                hub,
	}
}

// Start runs the realtime hub in the background
func (a *App) Start() {
	go a.Hub.Run()
}

// BootstrapAdmin creates the default admin when no admin exists and a
// password is configured. It reports whether an account was created.
func (a *App) BootstrapAdmin(ctx context.Context, username, password string, logger *slog.Logger) (bool, error) {
	if password == "" {
		logger.Warn("no bootstrap admin password configured, skipping admin bootstrap")
		return false, nil
	}
	created, err := a.AccountsService.Bootstrap(ctx, username, password)
	if err != nil {
		return false, fmt.Errorf("bootstrapping admin: %w", err)
	}
	if created {
		logger.Info("default admin created", slog.String("username", username))
	}
	return created, nil
}

// Close stops the hub and releases the storage backend
func (a *App) Close() error {
	a.Hub.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
