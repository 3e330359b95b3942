package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/expertlane/matchd/internal/models"
	"github.com/expertlane/matchd/pkg/repository"
)

// Ranker runs the scoring engine over the full candidate pool for a brief and
// persists an audit record per invocation.
type Ranker struct {
	briefs     repository.BriefRepo
	candidates repository.CandidateRepo
	runs       repository.MatchingRunRepo
	settings   repository.SettingsRepo
	logger     *slog.Logger
	workers    int
}

func NewRanker(br repository.BriefRepo, cr repository.CandidateRepo, rr repository.MatchingRunRepo, sr repository.SettingsRepo, logger *slog.Logger, workers int) *Ranker {
	if workers <= 0 {
		workers = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{briefs: br, candidates: cr, runs: rr, settings: sr, logger: logger, workers: workers}
}

type RankParams struct {
	BriefID    int64
	MinScore   float64
	MaxResults int
	// Widen marks a caller-initiated re-run with a lowered threshold. It is
	// recorded on the run for audit; the engine never relaxes MinScore on
	// its own.
	Widen bool
}

// CandidateResult is the ephemeral ranked output for one candidate. Score is
// rounded to 3 decimals; Band and Tools snapshot what the UI renders.
type CandidateResult struct {
	ExpertID int64    `json:"expert_id"`
	Score    float64  `json:"score"`
	Reasons  []string `json:"reasons"`
	Flags    []string `json:"flags"`
	BandMin  float64  `json:"band_min"`
	BandMax  float64  `json:"band_max"`
	Tools    []string `json:"tools"`
}

// RankOutcome is the full response of one ranking pass. BriefFound=false is
// the explicit not-found marker: callers treat it like an empty pool, logs
// distinguish it.
type RankOutcome struct {
	BriefFound bool              `json:"brief_found"`
	RunID      int64             `json:"run_id,omitempty"`
	PoolSize   int               `json:"pool_size"`
	MinScore   float64           `json:"min_score"`
	Widen      bool              `json:"widen"`
	Weights    Weights           `json:"weights"`
	Results    []CandidateResult `json:"results"`
}

// Rank scores every candidate against the brief, keeps those at or above
// MinScore, sorts descending with candidate id as the deterministic
// tie-break, truncates to MaxResults and persists one MatchingRun row.
// Zero-result runs are recorded too; a missing brief yields an empty outcome
// with BriefFound=false and no run row.
func (r *Ranker) Rank(ctx context.Context, p RankParams) (*RankOutcome, error) {
	brief, err := r.briefs.GetBrief(ctx, p.BriefID)
	if err != nil {
		return nil, fmt.Errorf("load brief %d: %w", p.BriefID, err)
	}
	if brief == nil {
		r.logger.Warn("rank requested for missing brief", slog.Int64("brief_id", p.BriefID))
		return &RankOutcome{BriefFound: false, MinScore: p.MinScore, Widen: p.Widen, Results: []CandidateResult{}}, nil
	}

	kv, err := r.settings.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings := ParseSettings(kv)
	req := ParseRequirements(brief.RequirementsJSON)

	pool, err := r.candidates.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidate pool: %w", err)
	}

	// scoring is pure per candidate; fan out over a bounded worker set and
	// keep results index-aligned so output order is deterministic
	scores := make([]Score, len(pool))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup
	for i := range pool {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			scores[i] = ScoreCandidate(req, &pool[i], settings)
		}(i)
	}
	wg.Wait()

	results := make([]CandidateResult, 0, len(pool))
	for i := range pool {
		total := round3(scores[i].Total)
		if total > 1.0 {
			r.logger.Debug("score above 1.0; check weight tuning",
				slog.Int64("expert_id", pool[i].ExpertID), slog.Float64("total", total))
		}
		if total < p.MinScore {
			continue
		}
		results = append(results, CandidateResult{
			ExpertID: pool[i].ExpertID,
			Score:    total,
			Reasons:  scores[i].Reasons,
			Flags:    scores[i].Flags,
			BandMin:  pool[i].BandMin,
			BandMax:  pool[i].BandMax,
			Tools:    pool[i].Tools,
		})
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].ExpertID < results[b].ExpertID
	})
	if len(results) > p.MaxResults {
		results = results[:p.MaxResults]
	}

	weightsJSON, err := json.Marshal(settings.Weights)
	if err != nil {
		return nil, fmt.Errorf("marshal weights: %w", err)
	}
	run := &models.MatchingRun{
		BriefID:     p.BriefID,
		MinScore:    p.MinScore,
		Widen:       p.Widen,
		WeightsJSON: string(weightsJSON),
		PoolSize:    len(pool),
		ResultCount: len(results),
	}
	runID, err := r.runs.CreateMatchingRun(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("persist matching run: %w", err)
	}

	r.logger.Info("matching run complete",
		slog.Int64("brief_id", p.BriefID),
		slog.Int64("run_id", runID),
		slog.Int("pool_size", len(pool)),
		slog.Int("result_count", len(results)),
		slog.Bool("widen", p.Widen),
	)

	return &RankOutcome{
		BriefFound: true,
		RunID:      runID,
		PoolSize:   len(pool),
		MinScore:   p.MinScore,
		Widen:      p.Widen,
		Weights:    settings.Weights,
		Results:    results,
	}, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
