package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/you/consultsite/internal/app"
	"github.com/you/consultsite/internal/config"
	"github.com/you/consultsite/internal/logger"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "consultsite",
		Short:         "Consultancy marketing site with phone sign-in and a client dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yml (default $CONSULTSITE_CONFIG or config/config.yml)")

	load := func() (*config.Config, error) {
		var (
			cfg *config.Config
			err error
		)
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
			return nil, fmt.Errorf("logger: %w", err)
		}
		return cfg, nil
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				defer logger.Sync()

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return app.Run(ctx, cfg)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create tables and seed the default record policies",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				defer logger.Sync()
				return app.Migrate(cfg)
			},
		},
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
