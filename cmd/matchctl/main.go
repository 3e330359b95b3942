package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/expertlane/matchd/internal/config"
	"github.com/expertlane/matchd/internal/db"
	"github.com/expertlane/matchd/internal/repository/sqlite"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "matchctl",
		Short: "matchctl is the admin cli for the matchd service",
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config YAML file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openRepo loads config and opens the database for a one-shot admin command.
// The caller closes the returned connection.
func openRepo(ctx context.Context) (*config.Config, *db.DB, *sqlite.SQLiteRepo, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger()
	conn, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open db %s: %w", cfg.DatabasePath, err)
	}

	return cfg, conn, sqlite.New(conn, logger), nil
}
