package matching_test

import (
	"testing"

	"github.com/expertlane/matchd/internal/matching"
)

func TestNormalize_NoTableMatch(t *testing.T) {
	got := matching.Normalize("  ChatGPT  ", nil)
	if len(got) != 1 {
		t.Fatalf("expected singleton set, got %v", got)
	}
	if _, ok := got["chatgpt"]; !ok {
		t.Fatalf("expected trimmed lowercase term, got %v", got)
	}
}

func TestNormalize_KeyMatchExpandsClass(t *testing.T) {
	table := map[string][]string{"hubspot": {"hubspot crm", "HubSpot Marketing Hub"}}

	got := matching.Normalize("HubSpot", table)
	for _, want := range []string{"hubspot", "hubspot crm", "hubspot marketing hub"} {
		if _, ok := got[want]; !ok {
			t.Fatalf("expected %q in class, got %v", want, got)
		}
	}
}

func TestNormalize_SynonymMatchExpandsClass(t *testing.T) {
	table := map[string][]string{"chatgpt": {"gpt-4", "gpt-4o"}}

	got := matching.Normalize("GPT-4", table)
	if _, ok := got["chatgpt"]; !ok {
		t.Fatalf("expected canonical key in class, got %v", got)
	}
	if _, ok := got["gpt-4o"]; !ok {
		t.Fatalf("expected sibling synonym in class, got %v", got)
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	got := matching.Normalize("   ", map[string][]string{"a": {"b"}})
	if len(got) != 1 {
		t.Fatalf("expected singleton of empty string, got %v", got)
	}
	if _, ok := got[""]; !ok {
		t.Fatalf("expected empty string member, got %v", got)
	}
}

func TestNormalizeAll_Union(t *testing.T) {
	table := map[string][]string{"hubspot": {"hubspot crm"}}

	got := matching.NormalizeAll([]string{"HubSpot", "Zapier"}, table)
	for _, want := range []string{"hubspot", "hubspot crm", "zapier"} {
		if _, ok := got[want]; !ok {
			t.Fatalf("expected %q in union, got %v", want, got)
		}
	}
}
