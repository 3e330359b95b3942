package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change matching engine settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print all settings rows as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		_, conn, repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		kv, err := repo.GetSettings(ctx)
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(kv))
		for k := range kv {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		ordered := make(map[string]string, len(kv))
		for _, k := range keys {
			ordered[k] = kv[k]
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ordered)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one settings key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		_, conn, repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := repo.SetSetting(ctx, args[0], args[1]); err != nil {
			return err
		}

		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
