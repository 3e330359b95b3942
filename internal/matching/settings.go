package matching

import (
	"encoding/json"
	"strconv"
)

// Weights are the per-component multipliers of the scoring model. They are
// admin-tunable and need not sum to 1.0; the certification bonus is additive
// headroom on top.
type Weights struct {
	Outcome      float64 `json:"outcome"`
	Tools        float64 `json:"tools"`
	Industry     float64 `json:"industry"`
	Availability float64 `json:"availability"`
	History      float64 `json:"history"`
}

// Settings is the explicit configuration passed into every scoring call, so
// scoring stays a pure function of (brief, candidate, settings).
type Settings struct {
	Weights          Weights
	CertBoost        float64
	ToolSynonyms     map[string][]string
	IndustrySynonyms map[string][]string
}

func DefaultWeights() Weights {
	return Weights{
		Outcome:      0.40,
		Tools:        0.30,
		Industry:     0.15,
		Availability: 0.10,
		History:      0.05,
	}
}

func DefaultSettings() Settings {
	return Settings{
		Weights:          DefaultWeights(),
		CertBoost:        0.10,
		ToolSynonyms:     map[string][]string{},
		IndustrySynonyms: map[string][]string{},
	}
}

// Admin settings keys.
const (
	KeyOutcomeWeight      = "outcome_weight"
	KeyToolsWeight        = "tools_weight"
	KeyIndustryWeight     = "industry_weight"
	KeyAvailabilityWeight = "availability_weight"
	KeyHistoryWeight      = "history_weight"
	KeyCertBoost          = "cert_boost"
	KeyToolSynonyms       = "tool_synonyms"
	KeyIndustrySynonyms   = "industry_synonyms"
)

// ParseSettings builds Settings from the stored key/value rows, falling back
// to defaults for absent or unparseable entries.
func ParseSettings(kv map[string]string) Settings {
	s := DefaultSettings()

	if v, ok := parseFloat(kv[KeyOutcomeWeight]); ok {
		s.Weights.Outcome = v
	}
	if v, ok := parseFloat(kv[KeyToolsWeight]); ok {
		s.Weights.Tools = v
	}
	if v, ok := parseFloat(kv[KeyIndustryWeight]); ok {
		s.Weights.Industry = v
	}
	if v, ok := parseFloat(kv[KeyAvailabilityWeight]); ok {
		s.Weights.Availability = v
	}
	if v, ok := parseFloat(kv[KeyHistoryWeight]); ok {
		s.Weights.History = v
	}
	if v, ok := parseFloat(kv[KeyCertBoost]); ok {
		s.CertBoost = v
	}
	if raw := kv[KeyToolSynonyms]; raw != "" {
		var table map[string][]string
		if err := json.Unmarshal([]byte(raw), &table); err == nil {
			s.ToolSynonyms = table
		}
	}
	if raw := kv[KeyIndustrySynonyms]; raw != "" {
		var table map[string][]string
		if err := json.Unmarshal([]byte(raw), &table); err == nil {
			s.IndustrySynonyms = table
		}
	}

	return s
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
