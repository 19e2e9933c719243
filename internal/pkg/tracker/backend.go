package tracker

import (
	"context"
	"errors"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

var (
	// ErrTransientBackend covers network failures and non-success responses.
	ErrTransientBackend = errors.New("backend unavailable")
	// ErrNotFound means the backend holds nothing yet.
	ErrNotFound = errors.New("no stored counter")
	// ErrUnauthorized is returned when the admin secret is rejected.
	ErrUnauthorized = errors.New("admin password rejected")
)

// Backend is a date -> counts store as seen by the widget.
type Backend interface {
	Name() string
	Get(ctx context.Context) (tally.Stored, error)
	Set(ctx context.Context, rec tally.Record) error
}
