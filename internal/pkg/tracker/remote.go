package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

// RemoteBackend talks to the persistence backend service over HTTP.
type RemoteBackend struct {
	baseURL string
	timeout time.Duration
	client  *fiber.Client
}

// NewRemoteBackend creates a client for the service at baseURL.
func NewRemoteBackend(baseURL string, timeout time.Duration) *RemoteBackend {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client: &fiber.Client{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
	}
}

func (r *RemoteBackend) Name() string {
	return "remote"
}

// Get fetches today's counter from GET /counter.
func (r *RemoteBackend) Get(ctx context.Context) (tally.Stored, error) {
	if err := ctx.Err(); err != nil {
		return tally.Stored{}, fmt.Errorf("%w: %v", ErrTransientBackend, err)
	}

	agent := r.client.Get(r.baseURL + "/counter").Timeout(r.requestTimeout(ctx))
	code, body, errs := agent.Bytes()
	if err := checkResponse(code, errs); err != nil {
		return tally.Stored{}, err
	}
	return tally.Decode(body)
}

// Set writes rec with POST /counter.
func (r *RemoteBackend) Set(ctx context.Context, rec tally.Record) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransientBackend, err)
	}

	agent := r.client.Post(r.baseURL + "/counter").
		Timeout(r.requestTimeout(ctx)).
		JSON(rec.Payload())
	code, _, errs := agent.Bytes()
	return checkResponse(code, errs)
}

// Reset calls the admin endpoint and reports how many dates were cleared.
func (r *RemoteBackend) Reset(ctx context.Context, password string) (int64, error) {
	agent := r.client.Post(r.baseURL+"/reset").
		Timeout(r.requestTimeout(ctx)).
		Set("admin-password", password)

	var out struct {
		Success bool  `json:"success"`
		Deleted int64 `json:"deleted"`
	}
	code, body, errs := agent.Bytes()
	if code == fiber.StatusUnauthorized {
		return 0, ErrUnauthorized
	}
	if err := checkResponse(code, errs); err != nil {
		return 0, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("%w: %v", tally.ErrMalformedData, err)
	}
	return out.Deleted, nil
}

func (r *RemoteBackend) requestTimeout(ctx context.Context) time.Duration {
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

func checkResponse(code int, errs []error) error {
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrTransientBackend, errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		return fmt.Errorf("%w: status %d", ErrTransientBackend, code)
	}
	return nil
}
