package tracker

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

// LocalBackend keeps the current record under a single namespaced key.
type LocalBackend struct {
	key     string
	storage fiber.Storage
}

// NewLocalBackend stores records under key in storage.
func NewLocalBackend(storage fiber.Storage, key string) *LocalBackend {
	return &LocalBackend{key: key, storage: storage}
}

func (l *LocalBackend) Name() string {
	return "local"
}

func (l *LocalBackend) Get(_ context.Context) (tally.Stored, error) {
	data, err := l.storage.Get(l.key)
	if err != nil {
		return tally.Stored{}, fmt.Errorf("read %s: %w", l.key, err)
	}
	if len(data) == 0 {
		return tally.Stored{}, ErrNotFound
	}
	return tally.Decode(data)
}

func (l *LocalBackend) Set(_ context.Context, rec tally.Record) error {
	data, err := tally.Encode(rec)
	if err != nil {
		return err
	}
	if err := l.storage.Set(l.key, data, 0); err != nil {
		return fmt.Errorf("write %s: %w", l.key, err)
	}
	return nil
}

// Close releases the underlying storage.
func (l *LocalBackend) Close() error {
	return l.storage.Close()
}
