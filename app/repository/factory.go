package repository

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/cache"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/database"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/env"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverMySQL    = database.DriverMySQL
	DriverPostgres = database.DriverPostgres
	DriverSQLite   = database.DriverSQLite
	DriverS3       = "s3"
)

// ResolveDriver picks the store from STORE_DRIVER, or like earlier releases
// from whichever connection string is present.
func ResolveDriver() string {
	if driver := env.GetEnv("STORE_DRIVER", ""); driver != "" {
		return driver
	}
	switch {
	case env.GetEnv("REDIS_URL", "") != "":
		return DriverRedis
	case env.GetEnv("DATABASE_URL", "") != "":
		return DriverPostgres
	}
	return DriverMemory
}

// NewCounterRepository connects the store for driver.
func NewCounterRepository(ctx context.Context, driver string) (CounterRepository, error) {
	switch driver {
	case DriverMemory:
		log.Info("[Store] Using in-memory storage (for development)")
		return NewMemoryCounterRepository(), nil
	case DriverRedis:
		log.Info("[Store] Using Redis for storage")
		return NewRedisCounterRepository(cache.GetClient()), nil
	case DriverMySQL, DriverPostgres, DriverSQLite:
		db, err := database.SetupDatabase(driver)
		if err != nil {
			return nil, err
		}
		log.Infof("[Store] Using %s for storage", driver)
		return NewSQLCounterRepository(db, driver), nil
	case DriverS3:
		cfg, err := LoadS3Config()
		if err != nil {
			return nil, err
		}
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Infof("[Store] Using S3 bucket %s for storage", cfg.BucketName)
		return NewS3CounterRepository(client, cfg.BucketName), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}
