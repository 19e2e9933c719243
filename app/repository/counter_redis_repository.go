package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

const (
	redisKeyPrefix = "smoking_count:"
	// a day plus an hour of slack for late writes around midnight
	redisTTL = 25 * time.Hour
)

// redisCounterRepository stores one key per date holding the JSON record.
// Keys written by older deployments hold a bare integer total.
type redisCounterRepository struct {
	client *redis.Client
}

// NewRedisCounterRepository creates a Redis-backed counter store
func NewRedisCounterRepository(client *redis.Client) CounterRepository {
	return &redisCounterRepository{client: client}
}

func (r *redisCounterRepository) Get(ctx context.Context, date string) (*tally.Stored, error) {
	value, err := r.client.Get(ctx, redisKeyPrefix+date).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stored tally.Stored
	if len(value) > 0 && value[0] == '{' {
		stored, err = tally.Decode([]byte(value))
	} else {
		stored, err = tally.DecodeLegacyValue(date, value)
	}
	if err != nil {
		return nil, err
	}
	stored.Date = date
	return &stored, nil
}

func (r *redisCounterRepository) Save(ctx context.Context, rec tally.Record) error {
	data, err := tally.Encode(rec)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKeyPrefix+rec.Date, data, redisTTL).Err()
}

// Reset scans for every counter key and deletes them in batches.
func (r *redisCounterRepository) Reset(ctx context.Context) (int64, error) {
	keys, err := r.scanKeys(ctx, redisKeyPrefix+"*")
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	const batchSize = 500
	var totalDeleted int64

	for i := 0; i < len(keys); i += batchSize {
		end := i + batchSize
		if end > len(keys) {
			end = len(keys)
		}

		deleted, err := r.client.Del(ctx, keys[i:end]...).Result()
		if err != nil {
			return totalDeleted, err
		}
		totalDeleted += deleted
	}

	return totalDeleted, nil
}

func (r *redisCounterRepository) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *redisCounterRepository) Driver() string {
	return DriverRedis
}
