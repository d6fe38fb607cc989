package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "stringing",
	Short: "Badminton racket stringing service",
	Long: `Field service backend for a badminton racket repair shop: pickup
orders, delivery agents, and a knowledge-graph-backed chat assistant.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to config file (default $STRINGING_HOME/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfigPath returns the effective config file location.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}

	home := os.Getenv("STRINGING_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			home = filepath.Join(os.TempDir(), ".stringing")
		} else {
			home = filepath.Join(userHome, ".stringing")
		}
	}
	return filepath.Join(home, "config.yaml")
}
