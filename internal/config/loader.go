package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix      = "COINRUSH_"
	envConfigFile  = "COINRUSH_CONFIG"
	envDotEnvFile  = "COINRUSH_ENV_FILE"
	defaultDotEnv  = ".env"
	maxRoundLength = 24 * 60 * 60
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if COINRUSH_CONFIG is set
//  3. env (prefix COINRUSH_), after a .env file has been merged into the
//     process environment without overriding variables already set
//
// Load only checks settings shared by every binary; use LoadServer or
// LoadClient to also require the side-specific endpoint.
func Load(_ context.Context) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// COINRUSH_COIN_INTERVAL_MS -> coin_interval_ms
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validateGame(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadServer loads configuration for the leaderboard service and requires a
// listen port and a usable store backend.
func LoadServer(ctx context.Context) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateServer(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient loads configuration for a game client and requires the
// leaderboard base URL.
func LoadClient(ctx context.Context) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateServer checks the settings the leaderboard service cannot run without.
func (c *Config) ValidateServer() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be set to a value in 1..65535", ErrInvalidConfig)
	}
	switch c.StoreBackend {
	case BackendFile:
		if strings.TrimSpace(c.StorePath) == "" {
			return fmt.Errorf("%w: store_path must not be empty for the file backend", ErrInvalidConfig)
		}
	case BackendMemory:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn must not be empty for the postgres backend", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.RedisAddr == "" || c.RedisKey == "" {
			return fmt.Errorf("%w: redis_addr and redis_key must be set for the redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	return nil
}

// ValidateClient checks the settings a game client cannot run without.
func (c *Config) ValidateClient() error {
	if c.LeaderboardURL == "" {
		return fmt.Errorf("%w: leaderboard_url must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.LeaderboardURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: leaderboard_url must be an absolute http(s) URL", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validateGame() error {
	switch {
	case c.RoundSeconds <= 0 || c.RoundSeconds > maxRoundLength:
		return fmt.Errorf("%w: round_seconds must be in 1..%d", ErrInvalidConfig, maxRoundLength)
	case c.CoinIntervalMS <= 0 || c.BananaIntervalMS <= 0 || c.MoveIntervalMS <= 0:
		return fmt.Errorf("%w: spawn and move intervals must be positive", ErrInvalidConfig)
	case c.CoinCapacity < 0 || c.BananaCapacity < 0:
		return fmt.Errorf("%w: capacities must not be negative", ErrInvalidConfig)
	case c.AvatarSize <= 0 || c.ItemSize <= 0:
		return fmt.Errorf("%w: sizes must be positive", ErrInvalidConfig)
	case c.StartTop < 0 || c.StartTop > 100 || c.StartLeft < 0 || c.StartLeft > 100:
		return fmt.Errorf("%w: start position must be within 0..100", ErrInvalidConfig)
	case c.SubmitTimeoutMS <= 0:
		return fmt.Errorf("%w: submit_timeout_ms must be positive", ErrInvalidConfig)
	}
	return nil
}

func loadDotEnv() error {
	path := os.Getenv(envDotEnvFile)
	if path == "" {
		path = defaultDotEnv
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}
