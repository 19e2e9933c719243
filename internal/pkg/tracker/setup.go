package tracker

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/config"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/env"
)

// OpenLocalStorage returns the storage behind the local backend.
func OpenLocalStorage(cfg *config.Widget) (fiber.Storage, error) {
	switch cfg.LocalStorageDriver {
	case config.LocalDriverRedis:
		// Separate database from the backend service cache (DB 0)
		return redis.New(redis.Config{
			Host:     env.GetEnv("CACHE_HOST", "localhost"),
			Port:     env.GetInt("CACHE_PORT", 6379),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
			Database: env.GetInt("LOCAL_STORAGE_REDIS_DB", 2),
			Reset:    false,
		}), nil
	case config.LocalDriverFile, "":
		return NewFileStorage(cfg.LocalStoragePath)
	}
	return nil, fmt.Errorf("unknown local storage driver %q", cfg.LocalStorageDriver)
}

// NewFromConfig wires the manager the way the widget is configured: remote
// primary with local fallback, or local only.
func NewFromConfig(cfg *config.Widget, opts ...Option) (*Manager, *LocalBackend, error) {
	storage, err := OpenLocalStorage(cfg)
	if err != nil {
		return nil, nil, err
	}
	local := NewLocalBackend(storage, cfg.LocalStorageKey)

	opts = append([]Option{
		WithRolloverInterval(cfg.RolloverCheckInterval),
		WithPersistTimeout(cfg.RemoteTimeout),
	}, opts...)

	if cfg.UseRemoteBackend {
		remote := NewRemoteBackend(cfg.BackendURL, cfg.RemoteTimeout)
		opts = append(opts, WithFallback(local))
		return NewManager(remote, opts...), local, nil
	}
	return NewManager(local, opts...), local, nil
}
