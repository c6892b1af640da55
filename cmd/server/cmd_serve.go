package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakif/theme-store/internal/server"
)

// themestore serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := boot()
		if err := cfg.Validate(); err != nil {
			return err
		}
		if !cfg.GitHubEnabled() {
			logger.Info("GITHUB_CLIENT_ID/SECRET not set, GitHub sign-in disabled")
		}
		if !cfg.GoogleEnabled() {
			logger.Info("GOOGLE_CLIENT_ID/SECRET not set, Google sign-in disabled")
		}

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		srv, err := server.New(cfg, db, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return srv.Start(ctx)
	},
}
