// Package config defines process configuration and its loaders.
//
// Conventions:
//   - Every key is flat so the same name works in YAML and as COINRUSH_<KEY>.
//   - New returns defaults; LoadServer and LoadClient layer file and env on top
//     and validate what each side needs before anything starts.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/okian/coinrush/internal/game"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config contains process configuration for the leaderboard server and the
// game clients.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Host and Port make up the server listen address. Port has no default.
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// StoreBackend selects the leaderboard persistence backend.
	StoreBackend  string `koanf:"store_backend"`
	StorePath     string `koanf:"store_path"`
	PostgresDSN   string `koanf:"postgres_dsn"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisKey      string `koanf:"redis_key"`

	// LeaderboardURL is the base URL game clients submit scores to.
	LeaderboardURL string `koanf:"leaderboard_url"`
	// Player is the display name; empty means a random one is generated.
	Player string `koanf:"player"`

	RoundSeconds     int     `koanf:"round_seconds"`
	CoinIntervalMS   int     `koanf:"coin_interval_ms"`
	CoinCapacity     int     `koanf:"coin_capacity"`
	BananaIntervalMS int     `koanf:"banana_interval_ms"`
	BananaCapacity   int     `koanf:"banana_capacity"`
	MoveIntervalMS   int     `koanf:"move_interval_ms"`
	AvatarSize       float64 `koanf:"avatar_size"`
	ItemSize         float64 `koanf:"item_size"`
	StartTop         float64 `koanf:"start_top"`
	StartLeft        float64 `koanf:"start_left"`
	SubmitTimeoutMS  int     `koanf:"submit_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		StoreBackend:     BackendFile,
		StorePath:        "scores.json",
		RedisKey:         "coinrush:leaderboard",
		RoundSeconds:     120,
		CoinIntervalMS:   2500,
		CoinCapacity:     30,
		BananaIntervalMS: 5000,
		BananaCapacity:   20,
		MoveIntervalMS:   25,
		AvatarSize:       3,
		ItemSize:         3,
		StartTop:         80,
		StartLeft:        50,
		SubmitTimeoutMS:  5000,
	}
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SubmitTimeout returns the end-of-round submission timeout.
func (c *Config) SubmitTimeout() time.Duration {
	return time.Duration(c.SubmitTimeoutMS) * time.Millisecond
}

// CoinInterval returns the coin spawn period.
func (c *Config) CoinInterval() time.Duration {
	return time.Duration(c.CoinIntervalMS) * time.Millisecond
}

// BananaInterval returns the banana spawn period.
func (c *Config) BananaInterval() time.Duration {
	return time.Duration(c.BananaIntervalMS) * time.Millisecond
}

// MoveInterval returns the motion tick period.
func (c *Config) MoveInterval() time.Duration {
	return time.Duration(c.MoveIntervalMS) * time.Millisecond
}

// GameSettings maps the round keys onto session settings.
func (c *Config) GameSettings() game.Settings {
	return game.Settings{
		RoundSeconds:   c.RoundSeconds,
		CoinInterval:   c.CoinInterval(),
		CoinCapacity:   c.CoinCapacity,
		BananaInterval: c.BananaInterval(),
		BananaCapacity: c.BananaCapacity,
		MoveInterval:   c.MoveInterval(),
		AvatarSize:     c.AvatarSize,
		ItemSize:       c.ItemSize,
		StartTop:       c.StartTop,
		StartLeft:      c.StartLeft,
		SubmitTimeout:  c.SubmitTimeout(),
	}
}
