package api_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/expertlane/matchd/internal/models"
	sqlite "github.com/expertlane/matchd/internal/repository/sqlite"
)

func seedMatchFixture(t *testing.T, repo *sqlite.SQLiteRepo) int64 {
	t.Helper()
	ctx := context.Background()

	briefID, err := repo.CreateBrief(ctx, &models.Brief{
		ClientID: 1,
		Title:    "CRM migration",
		RequirementsJSON: `{
			"outcome_tags": ["lead-gen"],
			"tools": ["hubspot"],
			"industry": "saas",
			"budget": {"min": 50, "max": 150},
			"urgency": "standard"
		}`,
		Status: models.BriefSubmitted,
	})
	if err != nil {
		t.Fatalf("seed brief: %v", err)
	}

	strong := &models.CandidateProfile{
		ExpertID:    10,
		Outcomes:    []string{"lead-gen"},
		Tools:       []string{"HubSpot"},
		Industries:  []string{"saas"},
		WeeklyHours: 40,
		BandMin:     80,
		BandMax:     140,
		Certifications: []models.Certification{
			{Tool: "hubspot", Verified: true},
		},
		CaseStudies: []models.CaseStudy{
			{OutcomeTags: []string{"lead-gen"}, Verified: true},
		},
	}
	weak := &models.CandidateProfile{
		ExpertID:    11,
		Outcomes:    []string{"branding"},
		Tools:       []string{"figma"},
		Industries:  []string{"retail"},
		WeeklyHours: 5,
	}
	for _, c := range []*models.CandidateProfile{strong, weak} {
		if err := repo.UpsertCandidate(ctx, c); err != nil {
			t.Fatalf("seed candidate %d: %v", c.ExpertID, err)
		}
	}
	return briefID
}

func TestRankEndpoint(t *testing.T) {
	srv, repo := setupServer(t)
	briefID := seedMatchFixture(t, repo)
	bearer := token(t, 1, models.RoleClient)

	res := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/briefs/%d/rank", srv.URL, briefID), bearer, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("rank status = %d", res.StatusCode)
	}
	body := decodeBody(t, res)

	if body["brief_found"] != true {
		t.Errorf("brief_found = %v", body["brief_found"])
	}
	if int(body["pool_size"].(float64)) != 2 {
		t.Errorf("pool_size = %v", body["pool_size"])
	}
	results := body["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("results = %d, want only the strong candidate", len(results))
	}
	first := results[0].(map[string]any)
	if int64(first["expert_id"].(float64)) != 10 {
		t.Errorf("top expert = %v, want 10", first["expert_id"])
	}
	if first["score"].(float64) < 0.65 {
		t.Errorf("top score %v below threshold", first["score"])
	}

	// each rank call leaves an audit row
	runs, err := repo.ListRunsByBrief(context.Background(), briefID)
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs = %d (%v), want 1", len(runs), err)
	}
}

func TestRankWidenOverrides(t *testing.T) {
	srv, repo := setupServer(t)
	briefID := seedMatchFixture(t, repo)
	bearer := token(t, 1, models.RoleClient)

	res := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/briefs/%d/rank?min_score=0.01&widen=true", srv.URL, briefID), bearer, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("rank status = %d", res.StatusCode)
	}
	body := decodeBody(t, res)
	if body["widen"] != true {
		t.Errorf("widen = %v", body["widen"])
	}
	if body["min_score"].(float64) != 0.01 {
		t.Errorf("min_score = %v", body["min_score"])
	}
	if len(body["results"].([]any)) != 2 {
		t.Errorf("results = %d, want both candidates", len(body["results"].([]any)))
	}

	runs, err := repo.ListRunsByBrief(context.Background(), briefID)
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs = %d (%v)", len(runs), err)
	}
	if !runs[0].Widen {
		t.Error("widen flag not recorded on run")
	}
}

func TestRunsAuditEndpoint(t *testing.T) {
	srv, repo := setupServer(t)
	briefID := seedMatchFixture(t, repo)
	bearer := token(t, 1, models.RoleClient)

	for _, q := range []string{"", "?min_score=0.1&widen=true"} {
		res := doJSON(t, http.MethodPost, fmt.Sprintf("%s/v1/briefs/%d/rank%s", srv.URL, briefID, q), bearer, nil)
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("rank%s status = %d", q, res.StatusCode)
		}
	}

	res := doJSON(t, http.MethodGet, fmt.Sprintf("%s/v1/briefs/%d/runs", srv.URL, briefID), bearer, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("runs status = %d", res.StatusCode)
	}
	body := decodeBody(t, res)
	runs := body["runs"].([]any)
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	// newest first; the widened re-run comes back on top
	first := runs[0].(map[string]any)
	if first["widen"] != true {
		t.Errorf("latest run widen = %v, want true", first["widen"])
	}
	if first["min_score"].(float64) != 0.1 {
		t.Errorf("latest run min_score = %v", first["min_score"])
	}

	res = doJSON(t, http.MethodGet, srv.URL+"/v1/briefs/999/runs", bearer, nil)
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("missing brief runs status = %d, want 404", res.StatusCode)
	}
}

func TestRankValidation(t *testing.T) {
	srv, _ := setupServer(t)
	bearer := token(t, 1, models.RoleClient)

	res := doJSON(t, http.MethodPost, srv.URL+"/v1/briefs/999/rank", bearer, nil)
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("missing brief status = %d, want 404", res.StatusCode)
	}

	res = doJSON(t, http.MethodPost, srv.URL+"/v1/briefs/1/rank?min_score=2", bearer, nil)
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("bad min_score status = %d, want 400", res.StatusCode)
	}

	res = doJSON(t, http.MethodPost, srv.URL+"/v1/briefs/abc/rank", bearer, nil)
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("bad brief id status = %d, want 400", res.StatusCode)
	}
}
