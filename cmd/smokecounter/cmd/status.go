package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tracker"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print today's counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := widgetConfig(cmd)
		if err != nil {
			return err
		}

		manager, local, err := tracker.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		defer local.Close()

		printRecord(cmd, manager.Initialize(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
