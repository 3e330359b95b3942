package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/expertlane/matchd/internal/matching"
	"github.com/spf13/cobra"
)

var (
	rankMinScore   float64
	rankMaxResults int
	rankWiden      bool
)

var rankCmd = &cobra.Command{
	Use:   "rank <brief_id>",
	Short: "Run the matching engine for a brief and print the shortlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		briefID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || briefID <= 0 {
			return fmt.Errorf("invalid brief id %q", args[0])
		}

		ctx := context.Background()
		cfg, conn, repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		params := matching.RankParams{
			BriefID:    briefID,
			MinScore:   cfg.MatchingConfig.MinScore,
			MaxResults: cfg.MatchingConfig.MaxResults,
			Widen:      rankWiden,
		}
		if cmd.Flags().Changed("min-score") {
			params.MinScore = rankMinScore
		}
		if cmd.Flags().Changed("max-results") {
			params.MaxResults = rankMaxResults
		}

		ranker := matching.NewRanker(repo, repo, repo, repo, newLogger(), cfg.MatchingConfig.ScoreWorkers)
		out, err := ranker.Rank(ctx, params)
		if err != nil {
			return err
		}
		if !out.BriefFound {
			return fmt.Errorf("brief %d not found", briefID)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rankCmd.Flags().Float64Var(&rankMinScore, "min-score", 0, "minimum score threshold (default from config)")
	rankCmd.Flags().IntVar(&rankMaxResults, "max-results", 0, "shortlist size cap (default from config)")
	rankCmd.Flags().BoolVar(&rankWiden, "widen", false, "mark this run as a widened re-run")
	rootCmd.AddCommand(rankCmd)
}
