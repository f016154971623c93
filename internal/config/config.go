package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	SourceMock     = "mock"
	SourceUpstream = "upstream"
)

type Config struct {
	ServerPort string
	DBPath     string
	LogLevel   string

	DataSource      string
	UpstreamBaseURL string
	UpstreamAPIKey  string

	MockSeed   int32
	RosterSize int

	PatchNotesURL string
	RedisURL      string

	CacheTTL   time.Duration
	RefreshTTL time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "dashboard.db"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DataSource:      getEnv("DATA_SOURCE", SourceMock),
		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", ""),
		UpstreamAPIKey:  getEnv("UPSTREAM_API_KEY", ""),
		PatchNotesURL:   getEnv("PATCH_NOTES_URL", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
	}

	seed, err := strconv.ParseInt(getEnv("MOCK_SEED", "20240627"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_SEED: %w", err)
	}
	cfg.MockSeed = int32(seed)

	cfg.RosterSize, err = strconv.Atoi(getEnv("ROSTER_SIZE", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid ROSTER_SIZE: %w", err)
	}

	cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.RefreshTTL, err = time.ParseDuration(getEnv("REFRESH_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TTL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("data_source", cfg.DataSource).
		Int("roster_size", cfg.RosterSize).
		Bool("redis", cfg.RedisURL != "").
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DataSource {
	case SourceMock:
	case SourceUpstream:
		if c.UpstreamBaseURL == "" {
			return fmt.Errorf("UPSTREAM_BASE_URL is required when DATA_SOURCE=%s", SourceUpstream)
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q", c.DataSource)
	}

	if c.RosterSize <= 0 {
		return fmt.Errorf("ROSTER_SIZE must be positive, got %d", c.RosterSize)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
