package tracker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

func newFileBackend(t *testing.T) (*LocalBackend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	storage, err := NewFileStorage(path)
	require.NoError(t, err)
	return NewLocalBackend(storage, "smokingCounterData"), path
}

func TestLocalBackend_EmptyIsNotFound(t *testing.T) {
	backend, _ := newFileBackend(t)

	_, err := backend.Get(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalBackend_RoundTripSurvivesReopen(t *testing.T) {
	backend, path := newFileBackend(t)
	rec := tally.Record{Date: "Mon Jan 01 2024", CountA: 2, CountB: 1}
	require.NoError(t, backend.Set(context.Background(), rec))

	storage, err := NewFileStorage(path)
	require.NoError(t, err)
	reopened := NewLocalBackend(storage, "smokingCounterData")

	stored, err := reopened.Get(context.Background())
	require.NoError(t, err)
	got, ok := stored.Resolve("Mon Jan 01 2024")
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestLocalBackend_CorruptFileIsMalformed(t *testing.T) {
	backend, path := newFileBackend(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"smokingCounterData":"{broken"}`), 0o600))

	_, err := backend.Get(context.Background())
	assert.ErrorIs(t, err, tally.ErrMalformedData)
}

func TestFileStorage_KeysAreIndependent(t *testing.T) {
	storage, err := NewFileStorage(filepath.Join(t.TempDir(), "s.json"))
	require.NoError(t, err)

	require.NoError(t, storage.Set("one", []byte("1"), time.Hour))
	require.NoError(t, storage.Set("two", []byte("2"), 0))

	val, err := storage.Get("one")
	require.NoError(t, err)
	assert.Equal(t, "1", string(val))

	require.NoError(t, storage.Delete("one"))
	val, err = storage.Get("one")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, storage.Reset())
	val, err = storage.Get("two")
	require.NoError(t, err)
	assert.Nil(t, val)
	assert.NoError(t, storage.Close())
}

func TestFileStorage_SetRecoversFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	storage, err := NewFileStorage(path)
	require.NoError(t, err)

	_, err = storage.Get("k")
	assert.Error(t, err)

	require.NoError(t, storage.Set("k", []byte("v"), 0))
	val, err := storage.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(val))
}
