package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "galleria",
		Version:      version,
		SilenceUsage: true,
		Short:        "Image gallery pipeline for back-office catalogs",
		Long: `Galleria ingests, optimizes, and stores gallery images.

Dropped or selected images are validated, scaled down to fit configured
dimension and byte budgets, and persisted to the configured image store.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "galleria.yaml", "path to the configuration file")

	cmd.AddCommand(newOptimizeCmd(&configPath))
	cmd.AddCommand(newWatchCmd(&configPath))

	return cmd
}
