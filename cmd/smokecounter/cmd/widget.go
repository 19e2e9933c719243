package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/aquarium"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/config"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/env"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/router"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tracker"
)

var (
	widgetHost string
	widgetPort string
)

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Run the counter page",
	Long: `Serve the two-box counter page with its aquarium background.

Counts are kept in local storage, or on the remote backend with local
storage as fallback when --remote is set. The day rolls over on its own.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := widgetConfig(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		manager, local, err := tracker.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		defer local.Close()

		manager.OnChange(func(rec tally.Record) {
			log.Debugf("[Widget] %s A=%d B=%d", rec.Date, rec.CountA, rec.CountB)
		})
		manager.Initialize(ctx)
		go manager.Run(ctx)

		tank := aquarium.NewAquarium(aquariumConfig(cfg), nil, manager.Total)
		go tank.Run(ctx)

		host := env.GetEnv("APP_HOST", "localhost")
		port := env.GetEnv("WIDGET_PORT", "4000")
		if cmd.Flags().Changed("host") {
			host = widgetHost
		}
		if cmd.Flags().Changed("port") {
			port = widgetPort
		}
		addr := fmt.Sprintf("%s:%s", host, port)

		app := router.NewWidgetApp(manager, tank, router.Metrics{
			User:     env.GetEnv("METRICS_USER", ""),
			Password: env.GetEnv("METRICS_PASSWORD", ""),
		})
		log.Infof("[Widget] Listening on %s", addr)
		return listen(ctx, app, addr)
	},
}

func aquariumConfig(cfg *config.Widget) aquarium.Config {
	ac := aquarium.DefaultConfig()
	ac.Cap = cfg.FishCap
	ac.Baseline = cfg.FishBaseline
	ac.SpawnChance = cfg.FishSpawnChance
	return ac
}

func init() {
	widgetCmd.Flags().StringVar(&widgetHost, "host", "", "listen host (APP_HOST)")
	widgetCmd.Flags().StringVar(&widgetPort, "port", "", "listen port (WIDGET_PORT)")
	rootCmd.AddCommand(widgetCmd)
}
