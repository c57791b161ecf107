package repository

import (
	"context"
	"fmt"
)

// Settings selects and configures a backend.
type Settings struct {
	Backend       string
	Path          string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

// OpenBackend builds the backend named by s.Backend.
func OpenBackend(ctx context.Context, s Settings) (Backend, error) {
	switch s.Backend {
	case "file", "":
		return NewFileBackend(s.Path), nil
	case "memory":
		return NewMemoryBackend(nil), nil
	case "postgres":
		return OpenPostgres(ctx, s.PostgresDSN)
	case "redis":
		return OpenRedis(ctx, s.RedisAddr, s.RedisPassword, s.RedisDB, s.RedisKey)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
	}
}
