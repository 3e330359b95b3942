package api

import (
	"net/http"
	"strconv"

	"github.com/expertlane/matchd/internal/config"
	"github.com/expertlane/matchd/internal/matching"
	"github.com/expertlane/matchd/pkg/repository"
	"github.com/gorilla/mux"
)

type MatchHandler struct {
	ranker *matching.Ranker
	briefs repository.BriefRepo
	runs   repository.MatchingRunRepo
	cfg    config.MatchingConfig
}

func NewMatchHandler(ranker *matching.Ranker, briefs repository.BriefRepo, runs repository.MatchingRunRepo, cfg config.MatchingConfig) *MatchHandler {
	return &MatchHandler{ranker: ranker, briefs: briefs, runs: runs, cfg: cfg}
}

// Rank runs the matching engine for one brief. Query params min_score,
// max_results and widen override the configured defaults; widen marks the run
// as a caller-initiated re-run with a relaxed threshold.
func (h *MatchHandler) Rank(w http.ResponseWriter, r *http.Request) {
	briefID, err := strconv.ParseInt(mux.Vars(r)["brief_id"], 10, 64)
	if err != nil || briefID <= 0 {
		http.Error(w, "invalid brief_id", http.StatusBadRequest)
		return
	}

	params := matching.RankParams{
		BriefID:    briefID,
		MinScore:   h.cfg.MinScore,
		MaxResults: h.cfg.MaxResults,
	}

	q := r.URL.Query()
	if s := q.Get("min_score"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 1 {
			http.Error(w, "invalid min_score", http.StatusBadRequest)
			return
		}
		params.MinScore = v
	}
	if s := q.Get("max_results"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 || v > 100 {
			http.Error(w, "invalid max_results", http.StatusBadRequest)
			return
		}
		params.MaxResults = v
	}
	if s := q.Get("widen"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			http.Error(w, "invalid widen", http.StatusBadRequest)
			return
		}
		params.Widen = v
	}

	out, err := h.ranker.Rank(r.Context(), params)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !out.BriefFound {
		http.Error(w, "brief not found", http.StatusNotFound)
		return
	}

	writeJSON(w, out, http.StatusOK)
}

// ListRuns returns the matching-run audit trail for a brief, newest first.
func (h *MatchHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	briefID, err := strconv.ParseInt(mux.Vars(r)["brief_id"], 10, 64)
	if err != nil || briefID <= 0 {
		http.Error(w, "invalid brief_id", http.StatusBadRequest)
		return
	}

	brief, err := h.briefs.GetBrief(r.Context(), briefID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if brief == nil {
		http.Error(w, "brief not found", http.StatusNotFound)
		return
	}

	runs, err := h.runs.ListRunsByBrief(r.Context(), briefID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, map[string]any{"brief_id": briefID, "runs": runs}, http.StatusOK)
}
