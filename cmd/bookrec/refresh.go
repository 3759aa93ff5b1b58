package main

import (
	"os"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Build a snapshot from the data source and print its stats",
	Long: `Read every book and rating from the configured data source, build the
TF-IDF index and rating matrix, and print the resulting snapshot stats.
Useful as a connectivity check for the whole data pipeline.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.close(ctx)
		return printJSON(os.Stdout, a.engine.Stats())
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
