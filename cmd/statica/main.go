package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/statica/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "statica",
	Short:   "Static file server with conditional caching, ranges and compression",
	Long: `Statica serves a directory tree over HTTP with ETag/Last-Modified
validation, single byte-range requests and gzip/deflate encoding.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
			files = append(files, configFile)
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./statica.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info, env: STATICA_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text, json (default: text, env: STATICA_LOG_FORMAT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
