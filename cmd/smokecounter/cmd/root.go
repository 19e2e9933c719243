package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/config"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/env"
)

var (
	useRemote     bool
	backendURL    string
	storageDriver string
	storagePath   string
	storageKey    string
)

var rootCmd = &cobra.Command{
	Use:   "smokecounter",
	Short: "Two-bucket daily smoke counter",
	Long: `smokecounter keeps a per-day tally of smoke events in two buckets.

It runs the persistence backend (serve), the counter page with its
aquarium (widget), and small commands to log or inspect today's count.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		env.SetupEnvFile()
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&useRemote, "remote", false, "use the remote backend (USE_REMOTE_BACKEND)")
	flags.StringVar(&backendURL, "backend-url", "", "remote backend base URL (BACKEND_URL)")
	flags.StringVar(&storageDriver, "storage-driver", "", "local storage driver: file or redis (LOCAL_STORAGE_DRIVER)")
	flags.StringVar(&storagePath, "storage-path", "", "local storage file (LOCAL_STORAGE_PATH)")
	flags.StringVar(&storageKey, "storage-key", "", "local storage key (LOCAL_STORAGE_KEY)")
}

// widgetConfig loads the widget configuration and applies the flags that
// were set on the command line.
func widgetConfig(cmd *cobra.Command) (*config.Widget, error) {
	cfg, _ := config.LoadWidget()

	flags := cmd.Flags()
	if flags.Changed("remote") {
		cfg.UseRemoteBackend = useRemote
	}
	if flags.Changed("backend-url") {
		cfg.BackendURL = backendURL
	}
	if flags.Changed("storage-driver") {
		cfg.LocalStorageDriver = storageDriver
	}
	if flags.Changed("storage-path") {
		cfg.LocalStoragePath = storagePath
	}
	if flags.Changed("storage-key") {
		cfg.LocalStorageKey = storageKey
	}
	return cfg, cfg.Validate()
}
