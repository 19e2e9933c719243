package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/middleware"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAddAndStatus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")

	out, err := run(t, "add", "a", "--storage-driver", "file", "--storage-path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "a=1  b=0  total=1")

	out, err = run(t, "add", "2", "--storage-driver", "file", "--storage-path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "a=1  b=1  total=2")

	out, err = run(t, "status", "--storage-driver", "file", "--storage-path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "total=2")
}

func TestAdd_UnknownBucket(t *testing.T) {
	_, err := run(t, "add", "c", "--storage-path", filepath.Join(t.TempDir(), "storage.json"))
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reset" || r.Header.Get(middleware.AdminPasswordHeader) != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"deleted":4}`))
	}))
	defer srv.Close()

	out, err := run(t, "reset", "--backend-url", srv.URL, "--password", "hunter2")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 4 stored days")

	_, err = run(t, "reset", "--backend-url", srv.URL, "--password", "wrong")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "admin password"))
}
