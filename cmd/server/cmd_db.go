package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/theme-store/internal/auth"
	"github.com/sakif/theme-store/internal/seed"
	"github.com/sakif/theme-store/internal/service"
)

// themestore migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := boot()

		// Opening the database applies the schema.
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		logger.Info("schema up to date", slog.String("database", cfg.DBPath))
		return nil
	},
}

var seedOpts seed.Options

// themestore seed [--admin-email a@b.c --admin-password secret] [--reviews=false]
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Delete all data and load the sample themes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := boot()

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		passwords := auth.NewPasswordService(cfg.BcryptCost)
		if _, err := seed.Run(cmd.Context(), db, passwords, seedOpts, logger); err != nil {
			return err
		}
		return nil
	},
}

// themestore promote <email>
var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the ADMIN role to an existing account",
	Long: "Grant the ADMIN role to an existing account. The role is carried in the " +
		"session token, so it takes effect the next time the user signs in.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := boot()
		if err := cfg.Validate(); err != nil {
			return err
		}

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			return err
		}
		svc := service.NewAuthService(db, tokens, auth.NewPasswordService(cfg.BcryptCost), logger)

		if err := svc.PromoteToAdmin(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("promoting %s: %w", args[0], err)
		}
		fmt.Printf("%s is now an ADMIN\n", args[0])
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOpts.AdminEmail, "admin-email", "", "also create an ADMIN account with this email")
	seedCmd.Flags().StringVar(&seedOpts.AdminPassword, "admin-password", "", "password for --admin-email")
	seedCmd.Flags().StringVar(&seedOpts.AdminName, "admin-name", "Admin", "display name for --admin-email")
	seedCmd.Flags().BoolVar(&seedOpts.SampleReviews, "reviews", true, "add sample reviewers and reviews")
}
