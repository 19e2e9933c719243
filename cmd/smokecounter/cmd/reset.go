package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/env"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tracker"
)

var resetPassword string

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every stored day on the backend",
	Long: `Ask the backend to delete every stored date.

Warning: This operation cannot be undone. The admin password is read
from --password or ADMIN_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := widgetConfig(cmd)
		if err != nil {
			return err
		}
		password := resetPassword
		if password == "" {
			password = env.GetEnv("ADMIN_PASSWORD", "")
		}

		remote := tracker.NewRemoteBackend(cfg.BackendURL, cfg.RemoteTimeout)
		deleted, err := remote.Reset(cmd.Context(), password)
		if errors.Is(err, tracker.ErrUnauthorized) {
			return fmt.Errorf("backend rejected the admin password")
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d stored days\n", deleted)
		return nil
	},
}

func init() {
	resetCmd.Flags().StringVar(&resetPassword, "password", "", "admin password (ADMIN_PASSWORD)")
	rootCmd.AddCommand(resetCmd)
}
