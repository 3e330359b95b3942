package api_test

import (
	"net/http"
	"testing"

	"github.com/expertlane/matchd/internal/models"
)

func TestSettingsRequireAdmin(t *testing.T) {
	srv, _ := setupServer(t)
	client := token(t, 1, models.RoleClient)

	res := doJSON(t, http.MethodGet, srv.URL+"/v1/admin/settings", client, nil)
	res.Body.Close()
	if res.StatusCode != http.StatusForbidden {
		t.Errorf("client GET status = %d, want 403", res.StatusCode)
	}

	res = doJSON(t, http.MethodPut, srv.URL+"/v1/admin/settings", client, map[string]string{"cert_boost": "0.2"})
	res.Body.Close()
	if res.StatusCode != http.StatusForbidden {
		t.Errorf("client PUT status = %d, want 403", res.StatusCode)
	}
}

func TestSettingsGetReturnsSeededSynonyms(t *testing.T) {
	srv, _ := setupServer(t)
	admin := token(t, 99, models.RoleAdmin)

	res := doJSON(t, http.MethodGet, srv.URL+"/v1/admin/settings", admin, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", res.StatusCode)
	}
	body := decodeBody(t, res)
	settings := body["settings"].(map[string]any)
	if settings["tool_synonyms"] == nil {
		t.Error("seeded tool_synonyms missing")
	}
	if body["effective"] == nil {
		t.Error("effective settings missing")
	}
}

func TestSettingsPutValidates(t *testing.T) {
	srv, _ := setupServer(t)
	admin := token(t, 99, models.RoleAdmin)

	res := doJSON(t, http.MethodPut, srv.URL+"/v1/admin/settings", admin, map[string]string{
		"outcome_weight": "0.5",
		"cert_boost":     "0.05",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d", res.StatusCode)
	}
	body := decodeBody(t, res)
	effective := body["effective"].(map[string]any)
	weights := effective["Weights"].(map[string]any)
	if weights["outcome"].(float64) != 0.5 {
		t.Errorf("effective outcome weight = %v", weights["outcome"])
	}

	for name, payload := range map[string]map[string]string{
		"weight out of range": {"tools_weight": "1.5"},
		"weight not a number": {"tools_weight": "lots"},
		"unknown key":         {"min_score_typo": "0.5"},
		"bad synonyms json":   {"tool_synonyms": "{"},
		"wrong synonyms type": {"tool_synonyms": `{"hubspot": "not-an-array"}`},
	} {
		res := doJSON(t, http.MethodPut, srv.URL+"/v1/admin/settings", admin, payload)
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, res.StatusCode)
		}
	}

	res = doJSON(t, http.MethodPut, srv.URL+"/v1/admin/settings", admin, map[string]string{
		"tool_synonyms": `{"hubspot": ["hub spot", "hs"]}`,
	})
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("valid synonyms status = %d", res.StatusCode)
	}
}
