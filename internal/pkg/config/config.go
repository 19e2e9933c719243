package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/env"
)

const (
	LocalDriverFile  = "file"
	LocalDriverRedis = "redis"
)

// Widget configures the counter widget side: where counts are read from and
// written to, and how the aquarium behaves.
type Widget struct {
	UseRemoteBackend      bool          `validate:"-"`
	BackendURL            string        `validate:"omitempty,url"`
	LocalStorageKey       string        `validate:"required"`
	LocalStorageDriver    string        `validate:"oneof=file redis"`
	LocalStoragePath      string        `validate:"required_if=LocalStorageDriver file"`
	RolloverCheckInterval time.Duration `validate:"gt=0"`
	RemoteTimeout         time.Duration `validate:"gt=0"`

	FishCap         int     `validate:"gt=0"`
	FishBaseline    int     `validate:"gte=0"`
	FishSpawnChance float64 `validate:"gte=0,lte=1"`
}

// Server configures the persistence backend service.
type Server struct {
	Host              string `validate:"required"`
	Port              string `validate:"required,numeric"`
	AdminPassword     string
	AdminPasswordHash string
	CORSAllowOrigins  string
	MetricsUser       string
	MetricsPassword   string
}

// LoadWidget reads the widget configuration from the environment.
func LoadWidget() (*Widget, error) {
	cfg := &Widget{
		UseRemoteBackend:      env.GetBool("USE_REMOTE_BACKEND", false),
		BackendURL:            env.GetEnv("BACKEND_URL", "http://localhost:3000"),
		LocalStorageKey:       env.GetEnv("LOCAL_STORAGE_KEY", "smokingCounterData"),
		LocalStorageDriver:    env.GetEnv("LOCAL_STORAGE_DRIVER", LocalDriverFile),
		LocalStoragePath:      env.GetEnv("LOCAL_STORAGE_PATH", defaultStoragePath()),
		RolloverCheckInterval: time.Duration(env.GetInt("ROLLOVER_CHECK_INTERVAL_MS", 60000)) * time.Millisecond,
		RemoteTimeout:         time.Duration(env.GetInt("REMOTE_TIMEOUT_MS", 5000)) * time.Millisecond,
		FishCap:               env.GetInt("FISH_CAP", 30),
		FishBaseline:          env.GetInt("FISH_BASELINE", 3),
		FishSpawnChance:       env.GetFloat("FISH_SPAWN_CHANCE", 0.3),
	}
	return cfg, cfg.Validate()
}

// LoadServer reads the backend service configuration from the environment.
func LoadServer() (*Server, error) {
	cfg := &Server{
		Host:              env.GetEnv("APP_HOST", "localhost"),
		Port:              env.GetEnv("APP_PORT", "3000"),
		AdminPassword:     env.GetEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash: env.GetEnv("ADMIN_PASSWORD_HASH", ""),
		CORSAllowOrigins:  env.GetEnv("CORS_ALLOW_ORIGINS", "*"),
		MetricsUser:       env.GetEnv("METRICS_USER", ""),
		MetricsPassword:   env.GetEnv("METRICS_PASSWORD", ""),
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid server config: %w", err)
	}
	return cfg, nil
}

// Validate validates the widget configuration
func (w *Widget) Validate() error {
	if w.UseRemoteBackend && w.BackendURL == "" {
		return fmt.Errorf("invalid widget config: BACKEND_URL is required when USE_REMOTE_BACKEND is set")
	}
	if err := validator.New().Struct(w); err != nil {
		return fmt.Errorf("invalid widget config: %w", err)
	}
	return nil
}

// Addr returns host:port.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "smokecounter", "storage.json")
	}
	return filepath.Join(home, ".smokecounter", "storage.json")
}
