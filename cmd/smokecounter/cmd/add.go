package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tracker"
)

var addCmd = &cobra.Command{
	Use:   "add <a|b>",
	Short: "Log one event in a bucket",
	Long: `Log one smoke event in bucket a (1) or b (2) and print today's counts.

Examples:
  smokecounter add a
  smokecounter add 2 --remote --backend-url http://localhost:3000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket, err := tally.ParseBucket(args[0])
		if err != nil {
			return err
		}
		cfg, err := widgetConfig(cmd)
		if err != nil {
			return err
		}

		manager, local, err := tracker.NewFromConfig(cfg)
		if err != nil {
			return err
		}
		defer local.Close()

		ctx := cmd.Context()
		manager.Initialize(ctx)
		printRecord(cmd, manager.Increment(ctx, bucket))
		return nil
	},
}

func printRecord(cmd *cobra.Command, rec tally.Record) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s  a=%d  b=%d  total=%d\n", rec.Date, rec.CountA, rec.CountB, rec.Total())
}

func init() {
	rootCmd.AddCommand(addCmd)
}
