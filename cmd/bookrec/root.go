package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "bookrec",
	Short:        "Book recommendation service",
	SilenceUsage: true,
	Long: `bookrec serves content-based, collaborative and keyword-expanded book
recommendations over HTTP, backed by MongoDB, SQLite or a YAML file.

Configuration is read from --config, $BOOKREC_CONFIG or the default paths,
then overridden by environment variables.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default: $BOOKREC_CONFIG, ./bookrec.yaml, ./config.yaml, /etc/bookrec/config.yaml)")
}

// Execute 由 main 调用。
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
