package main

import (
	"context"
	"fmt"

	dbfs "github.com/expertlane/matchd/db"
	"github.com/expertlane/matchd/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and seed data",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		_, conn, _, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := db.Migrate(ctx, conn, dbfs.Migrations, dbfs.SeedFiles); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		fmt.Println("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
