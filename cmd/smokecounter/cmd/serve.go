package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/SmokeCounter/app/repository"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/cache"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/config"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/router"
)

const shutdownTimeout = 5 * time.Second

var (
	serveHost  string
	servePort  string
	serveStore string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the persistence backend",
	Long: `Run the HTTP service the widget reads and writes daily counts through.

The store is chosen by --store or STORE_DRIVER (memory, redis, mysql,
postgres, sqlite, s3). Without either, REDIS_URL selects redis and
DATABASE_URL selects postgres.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServer()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("host") {
			cfg.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		driver := serveStore
		if driver == "" {
			driver = repository.ResolveDriver()
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repo, err := repository.NewCounterRepository(ctx, driver)
		if err != nil {
			return err
		}
		defer cache.Close()

		app := router.NewBackendApp(repo, cfg)
		log.Infof("[Serve] Backend listening on %s (store: %s)", cfg.Addr(), repo.Driver())
		return listen(ctx, app, cfg.Addr())
	},
}

// listen serves app until ctx is cancelled, then shuts it down.
func listen(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("[Serve] Shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (APP_HOST)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (APP_PORT)")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "store driver (STORE_DRIVER)")
	rootCmd.AddCommand(serveCmd)
}
