package matching

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Requirements is the typed extraction of a brief's loosely-structured
// requirements document. Scoring reads only this struct, never the raw JSON.
type Requirements struct {
	OutcomeTags []string
	Tools       []string
	Industry    string
	BudgetMin   float64
	BudgetMax   float64
	Urgency     string
}

// Urgency levels map to required weekly hours for the availability component.
const (
	UrgencyASAP     = "asap"
	UrgencyUrgent   = "urgent"
	UrgencyStandard = "standard"
	UrgencyFlexible = "flexible"
)

// RequiredHours returns the weekly-hours threshold implied by the brief's
// urgency. Unknown or missing urgency falls back to standard.
func (r Requirements) RequiredHours() int {
	switch r.Urgency {
	case UrgencyASAP:
		return 50
	case UrgencyUrgent:
		return 40
	case UrgencyFlexible:
		return 20
	default:
		return 30
	}
}

// ParseRequirements extracts the fields scoring needs from a brief's
// requirements JSON. The document is authored by an external flow and its
// shape drifts, so extraction is tolerant: missing or mistyped fields become
// zero values instead of errors.
func ParseRequirements(doc string) Requirements {
	var req Requirements

	req.OutcomeTags = stringList(gjson.Get(doc, "outcome_tags"))
	req.Tools = stringList(gjson.Get(doc, "tools"))
	req.Industry = strings.TrimSpace(gjson.Get(doc, "industry").String())
	req.BudgetMin = gjson.Get(doc, "budget.min").Float()
	req.BudgetMax = gjson.Get(doc, "budget.max").Float()
	req.Urgency = strings.ToLower(strings.TrimSpace(gjson.Get(doc, "urgency").String()))

	return req
}

func stringList(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	var out []string
	v.ForEach(func(_, item gjson.Result) bool {
		s := strings.TrimSpace(item.String())
		if s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}
