package tracker

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/config"
)

func widgetConfig(t *testing.T) *config.Widget {
	return &config.Widget{
		BackendURL:            "http://localhost:3000",
		LocalStorageKey:       "smokingCounterData",
		LocalStorageDriver:    config.LocalDriverFile,
		LocalStoragePath:      filepath.Join(t.TempDir(), "storage.json"),
		RolloverCheckInterval: time.Minute,
		RemoteTimeout:         time.Second,
	}
}

func TestNewFromConfig_LocalOnly(t *testing.T) {
	m, local, err := NewFromConfig(widgetConfig(t))
	require.NoError(t, err)
	defer local.Close()

	assert.Equal(t, "local", m.primary.Name())
	assert.Nil(t, m.fallback)
}

func TestNewFromConfig_RemoteWithFallback(t *testing.T) {
	cfg := widgetConfig(t)
	cfg.UseRemoteBackend = true

	m, local, err := NewFromConfig(cfg)
	require.NoError(t, err)
	defer local.Close()

	assert.Equal(t, "remote", m.primary.Name())
	require.NotNil(t, m.fallback)
	assert.Equal(t, "local", m.fallback.Name())
	assert.Equal(t, time.Minute, m.interval)
}

func TestOpenLocalStorage_UnknownDriver(t *testing.T) {
	cfg := widgetConfig(t)
	cfg.LocalStorageDriver = "indexeddb"

	_, err := OpenLocalStorage(cfg)
	assert.Error(t, err)
}
