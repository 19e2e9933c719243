package repository

import (
	"context"
	"errors"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

// ErrUnknownDriver is returned for an unsupported STORE_DRIVER.
var ErrUnknownDriver = errors.New("unknown store driver")

// CounterRepository defines the date -> counts store behind the backend service
type CounterRepository interface {
	// Get returns nil, nil when nothing is stored for date.
	Get(ctx context.Context, date string) (*tally.Stored, error)
	Save(ctx context.Context, rec tally.Record) error
	// Reset removes every stored date and reports how many were removed.
	Reset(ctx context.Context) (int64, error)
	Driver() string
}
