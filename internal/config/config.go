package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the full application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Import    ImportConfig    `yaml:"import"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	SecureCookies   bool          `yaml:"secure_cookies"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type     string         `yaml:"type"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	URL          string `yaml:"url"`
	PoolSize     int    `yaml:"pool_size"`
	MinIdleConns int    `yaml:"min_idle_conns"`
	KeyPrefix    string `yaml:"key_prefix"`
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	URL             string        `yaml:"url"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
}

// AuthConfig holds session and login settings
type AuthConfig struct {
	SessionDuration time.Duration `yaml:"session_duration"`
	LoginAttempts   int           `yaml:"login_attempts"`
	LoginWindow     time.Duration `yaml:"login_window"`
}

// ImportConfig limits spreadsheet uploads
type ImportConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// BootstrapConfig describes the admin created on first start
type BootstrapConfig struct {
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

// LogConfig selects the log level and output format
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path, applies ROSTER_* environment overrides
// and fills defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		data = []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str("ROSTER_HOST", &c.Server.Host)
	integer("ROSTER_PORT", &c.Server.Port)
	if v, ok := lookup("ROSTER_ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("ROSTER_SECURE_COOKIES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("ROSTER_SECURE_COOKIES: %w", err))
		} else {
			c.Server.SecureCookies = b
		}
	}

	str("ROSTER_STORAGE_TYPE", &c.Storage.Type)
	str("ROSTER_REDIS_URL", &c.Storage.Redis.URL)
	str("ROSTER_POSTGRES_URL", &c.Storage.Postgres.URL)

	duration("ROSTER_SESSION_DURATION", &c.Auth.SessionDuration)
	integer("ROSTER_LOGIN_ATTEMPTS", &c.Auth.LoginAttempts)
	duration("ROSTER_LOGIN_WINDOW", &c.Auth.LoginWindow)

	if v, ok := lookup("ROSTER_MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("ROSTER_MAX_UPLOAD_BYTES: %w", err))
		} else {
			c.Import.MaxUploadBytes = n
		}
	}

	str("ROSTER_ADMIN_USERNAME", &c.Bootstrap.AdminUsername)
	str("ROSTER_ADMIN_PASSWORD", &c.Bootstrap.AdminPassword)

	str("ROSTER_LOG_LEVEL", &c.Log.Level)
	str("ROSTER_LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}

	if c.Storage.Type == "" {
		c.Storage.Type = StorageMemory
	}
	c.Storage.Type = strings.ToLower(c.Storage.Type)
	if c.Storage.Redis.PoolSize == 0 {
		c.Storage.Redis.PoolSize = 10
	}
	if c.Storage.Redis.MinIdleConns == 0 {
		c.Storage.Redis.MinIdleConns = 2
	}
	if c.Storage.Redis.KeyPrefix == "" {
		c.Storage.Redis.KeyPrefix = "roster"
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.Storage.Postgres.MinConns == 0 {
		c.Storage.Postgres.MinConns = 2
	}
	if c.Storage.Postgres.MaxConnLifetime == 0 {
		c.Storage.Postgres.MaxConnLifetime = time.Hour
	}
	if c.Storage.Postgres.MaxConnIdleTime == 0 {
		c.Storage.Postgres.MaxConnIdleTime = 30 * time.Minute
	}

	if c.Auth.SessionDuration == 0 {
		c.Auth.SessionDuration = 24 * time.Hour
	}
	if c.Auth.LoginAttempts == 0 {
		c.Auth.LoginAttempts = 5
	}
	if c.Auth.LoginWindow == 0 {
		c.Auth.LoginWindow = 15 * time.Minute
	}

	if c.Import.MaxUploadBytes == 0 {
		c.Import.MaxUploadBytes = 10 << 20
	}

	if c.Bootstrap.AdminUsername == "" {
		c.Bootstrap.AdminUsername = "admin"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate reports the first set of problems that would stop the server
// from starting
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Type {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.Redis.URL == "" {
			errs = append(errs, errors.New("storage.redis.url is required for redis storage"))
		}
	case StoragePostgres:
		if c.Storage.Postgres.URL == "" {
			errs = append(errs, errors.New("storage.postgres.url is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage type %q", c.Storage.Type))
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Auth.SessionDuration < 0 {
		errs = append(errs, errors.New("auth.session_duration must be positive"))
	}
	if c.Import.MaxUploadBytes < 0 {
		errs = append(errs, errors.New("import.max_upload_bytes must be positive"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// SlogLevel converts the configured level name
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger builds the process logger writing to stdout
func (l LogConfig) NewLogger() *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
