// Package config reads process settings from flags, falling back to the
// environment and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Addr           string
	DataServiceURL string
	StoreDriver    string
	PostgresDSN    string
	SQLitePath     string
	LogLevel       string
	Development    bool
	AllowedOrigins []string
	HTTPTimeout    time.Duration

	OpenDotaURL    string
	OpenDotaAPIKey string
	IngestDelay    time.Duration
	CacheSize      int

	// Args holds the positional arguments left after the flags.
	Args []string
}

// LoadDotEnv reads .env files into the environment. Missing files are ignored
// and variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load parses args for the named command. Every flag defaults to its
// environment variable.
func Load(name string, args []string) (Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		cfg     Config
		origins string
	)
	fs.StringVar(&cfg.Addr, "addr", env("TI_ADDR", ":8080"), "listen address")
	fs.StringVar(&cfg.DataServiceURL, "data-service-url", env("TI_DATA_SERVICE_URL", ""), "data service base URL (default: this server)")
	fs.StringVar(&cfg.StoreDriver, "store", env("TI_STORE", DriverSQLite), "store driver: memory, postgres or sqlite")
	fs.StringVar(&cfg.PostgresDSN, "postgres-dsn", env("POSTGRES_DSN", ""), "PostgreSQL connection string")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", env("TI_SQLITE_PATH", "data/ti.db"), "SQLite database file")
	fs.StringVar(&cfg.LogLevel, "log-level", env("TI_LOG_LEVEL", "info"), "log level")
	fs.BoolVar(&cfg.Development, "dev", envBool("TI_DEV", false), "development logging and relaxed websocket origins")
	fs.StringVar(&origins, "allowed-origins", env("TI_ALLOWED_ORIGINS", ""), "comma separated websocket origin patterns")
	fs.DurationVar(&cfg.HTTPTimeout, "http-timeout", envDuration("TI_HTTP_TIMEOUT", 10*time.Second), "data service request timeout")
	fs.StringVar(&cfg.OpenDotaURL, "opendota-url", env("OPENDOTA_URL", "https://api.opendota.com/api"), "OpenDota API base URL")
	fs.StringVar(&cfg.OpenDotaAPIKey, "opendota-api-key", env("OPENDOTA_API_KEY", ""), "OpenDota API key")
	fs.DurationVar(&cfg.IngestDelay, "ingest-delay", envDuration("TI_INGEST_DELAY", time.Second), "pause between match fetches")
	fs.IntVar(&cfg.CacheSize, "cache-size", envInt("TI_CACHE_SIZE", 1024), "in-memory OpenDota response cache entries")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg.Args = fs.Args()
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: --postgres-dsn is required for the postgres store", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalid, c.StoreDriver)
	}
	if c.StoreDriver == DriverSQLite && c.SQLitePath == "" {
		return fmt.Errorf("%w: --sqlite-path is required for the sqlite store", ErrInvalid)
	}
	for name, raw := range map[string]string{"data-service-url": c.DataServiceURL, "opendota-url": c.OpenDotaURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: --%s %q is not an absolute URL", ErrInvalid, name, raw)
		}
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: --http-timeout must be positive", ErrInvalid)
	}
	if c.IngestDelay < 0 {
		return fmt.Errorf("%w: --ingest-delay must not be negative", ErrInvalid)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("%w: --cache-size must be positive", ErrInvalid)
	}
	return nil
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}
