// Command themestore runs the theme store API and its maintenance tasks.
//
//	themestore serve               start the HTTP server
//	themestore migrate             create or update the schema
//	themestore seed                reset the database and load sample themes
//	themestore promote <email>     grant ADMIN to an account
//
// Settings come from the environment (and an optional .env file); see
// internal/config.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/theme-store/internal/config"
	sqliteRepo "github.com/sakif/theme-store/internal/repository/sqlite"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "themestore",
	Short:         "Theme store API server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(promoteCmd)
}

// boot loads the configuration and builds the logger every command shares.
func boot() (config.Config, *slog.Logger) {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)
	return cfg, logger
}

// openDB creates the database directory if needed, then opens the database
// and applies the schema.
func openDB(cfg config.Config) (*sqliteRepo.DB, error) {
	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}
