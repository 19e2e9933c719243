package database

import (
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ManuelReschke/SmokeCounter/app/models"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var DB *gorm.DB

// GetDB returns the connection opened by SetupDatabase.
func GetDB() *gorm.DB {
	return DB
}

// SetupDatabase connects to the configured SQL store and migrates the
// counter table. Connects are retried like a container start-up race.
func SetupDatabase(driver string) (*gorm.DB, error) {
	dialector, err := Dialector(driver)
	if err != nil {
		return nil, err
	}

	err = retry.Do(
		func() error {
			var openErr error
			DB, openErr = gorm.Open(dialector, &gorm.Config{
				Logger: logger.Default.LogMode(logger.Warn),
			})
			return openErr
		},
		retry.Attempts(maxRetries),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warnf("[Database] Failed to connect (try %d/%d): %v", n+1, maxRetries, err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if env.GetBool("DB_AUTO_MIGRATE", true) {
		if err := Migrate(DB); err != nil {
			return nil, err
		}
	}
	return DB, nil
}

// Migrate creates or updates the counter table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.DailyCount{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Dialector builds the GORM dialector for driver from the environment.
func Dialector(driver string) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL:
		// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			env.GetEnv("DB_USER", ""),
			env.GetEnv("DB_PASSWORD", ""),
			env.GetEnv("DB_HOST", "127.0.0.1"),
			env.GetEnv("DB_PORT", "3306"),
			env.GetEnv("DB_NAME", ""),
		)
		return mysql.New(mysql.Config{
			DSN:                       dsn, // data source name
			DefaultStringSize:         256, // default size for string fields
			SkipInitializeWithVersion: false,
		}), nil
	case DriverPostgres:
		dsn := env.GetEnv("DATABASE_URL", "")
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
				env.GetEnv("DB_HOST", "127.0.0.1"),
				env.GetEnv("DB_USER", ""),
				env.GetEnv("DB_PASSWORD", ""),
				env.GetEnv("DB_NAME", ""),
				env.GetEnv("DB_PORT", "5432"),
				env.GetEnv("DB_SSLMODE", "require"),
			)
		}
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(env.GetEnv("SQLITE_PATH", "smokecounter.db")), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}
