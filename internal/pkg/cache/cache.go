package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/env"
)

var client *redis.Client

// SetupCache initializes the Redis connection. REDIS_URL wins over the
// CACHE_HOST/CACHE_PORT/CACHE_PASSWORD triple.
func SetupCache() {
	opts, err := options()
	if err != nil {
		log.Warnf("[Cache] Invalid REDIS_URL, falling back to CACHE_HOST: %v", err)
		opts = hostOptions()
	}
	client = redis.NewClient(opts)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Warnf("[Cache] Could not connect to Redis at %s: %v", opts.Addr, err)
	} else {
		log.Infof("[Cache] Successfully connected to Redis: %s", pong)
	}
}

func options() (*redis.Options, error) {
	if url := env.GetEnv("REDIS_URL", ""); url != "" {
		return redis.ParseURL(url)
	}
	return hostOptions(), nil
}

func hostOptions() *redis.Options {
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", env.GetEnv("CACHE_HOST", "localhost"), env.GetEnv("CACHE_PORT", "6379")),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       env.GetInt("CACHE_DB", 0),
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Close closes the shared client if it was opened.
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}
