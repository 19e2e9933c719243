package router

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SmokeCounter/app/repository"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/aquarium"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/config"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/middleware"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tracker"
)

func testServerConfig() *config.Server {
	return &config.Server{
		Host:             "localhost",
		Port:             "3000",
		AdminPassword:    "hunter2",
		CORSAllowOrigins: "*",
		MetricsUser:      "admin",
		MetricsPassword:  "secret",
	}
}

func TestFindBasePath(t *testing.T) {
	assert.Equal(t, "../../../", FindBasePath("views"))
	assert.Equal(t, "", FindBasePath("no-such-dir-here"))
}

func TestBackendApp_Routes(t *testing.T) {
	app := NewBackendApp(repository.NewMemoryCounterRepository(), testServerConfig())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/counter", strings.NewReader(`{"date":"Mon Jan 01 2024","countA":1,"countB":0}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/reset", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/reset", nil)
	req.Header.Set(middleware.AdminPasswordHeader, "hunter2")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestBackendApp_CORS(t *testing.T) {
	app := NewBackendApp(repository.NewMemoryCounterRepository(), testServerConfig())

	req := httptest.NewRequest(http.MethodGet, "/counter", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://widget.example")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestBackendApp_MetricsBasicAuth(t *testing.T) {
	app := NewBackendApp(repository.NewMemoryCounterRepository(), testServerConfig())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("admin", "secret")
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWidgetApp_Routes(t *testing.T) {
	storage, err := tracker.NewFileStorage(filepath.Join(t.TempDir(), "storage.json"))
	require.NoError(t, err)
	manager := tracker.NewManager(tracker.NewLocalBackend(storage, "smokingCounterData"))
	manager.Initialize(context.Background())
	tank := aquarium.NewAquarium(aquarium.DefaultConfig(), rand.NewSource(1), manager.Total)

	app := NewWidgetApp(manager, tank, Metrics{})

	for _, path := range []string{"/", "/state", "/aquarium", "/aquarium.png", "/assets/widget.js", "/metrics"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}

	req := httptest.NewRequest(http.MethodPost, "/smoke/a", nil)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, manager.Total())
}
