// Package cmd implements the coordinator's command-line interface: the
// root command and the serve subcommand that brings up the HTTP surface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "coordinatord",
	Short: "Control plane for a distributed web crawler",
	Long:  `coordinatord owns the frontier, visited index, domain scheduler and run lifecycle for crawl runs, and serves the worker/operator HTTP API.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	_ = godotenv.Load()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or ./config/config.yaml)")
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(os.Stdout, "coordinatord version 1.0.0")
		},
	})
}
