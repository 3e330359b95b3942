package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/expertlane/matchd/internal/models"
)

// Component names, also the keys of Score.Components.
const (
	ComponentOutcome      = "outcome"
	ComponentTools        = "tools"
	ComponentIndustry     = "industry"
	ComponentAvailability = "availability"
	ComponentHistory      = "history"
)

// Risk flags surfaced alongside a score.
const (
	FlagBudgetExceedsBand     = "budget_exceeds_band"
	FlagAvailabilityShortfall = "availability_shortfall"
	FlagUnverifiedToolClaim   = "unverified_tool_claim"
)

const maxReasons = 4

// Score is the full scoring output for one brief/candidate pair. Total is a
// weighted sum plus the certification bonus and is deliberately not clamped
// to 1.0, so mis-tuned weights stay visible to admins.
type Score struct {
	Total      float64            `json:"total"`
	Components map[string]float64 `json:"components"`
	CertBonus  float64            `json:"cert_bonus"`
	Reasons    []string           `json:"reasons"`
	Flags      []string           `json:"flags"`
}

// ScoreCandidate computes the five component scores, combines them with the
// configured weights and adds the certification bonus. Pure function of its
// inputs; safe to call concurrently.
func ScoreCandidate(req Requirements, cand *models.CandidateProfile, s Settings) Score {
	outcome, outcomeMatched := fractionMatched(req.OutcomeTags, cand.Outcomes, nil)
	tools, toolsMatched := fractionMatched(req.Tools, cand.Tools, s.ToolSynonyms)

	var industryReq []string
	if req.Industry != "" {
		industryReq = []string{req.Industry}
	}
	industry, industryMatched := fractionMatched(industryReq, cand.Industries, s.IndustrySynonyms)

	availability := availabilityScore(req, cand)
	history := historyScore(req, cand)

	certBonus, certTool := certificationBonus(req, cand, s)

	components := map[string]float64{
		ComponentOutcome:      outcome,
		ComponentTools:        tools,
		ComponentIndustry:     industry,
		ComponentAvailability: availability,
		ComponentHistory:      history,
	}

	total := s.Weights.Outcome*outcome +
		s.Weights.Tools*tools +
		s.Weights.Industry*industry +
		s.Weights.Availability*availability +
		s.Weights.History*history +
		certBonus

	sc := Score{
		Total:      total,
		Components: components,
		CertBonus:  certBonus,
	}

	// reasons in priority order, capped
	if outcome > 0.5 && len(outcomeMatched) > 0 {
		sc.Reasons = append(sc.Reasons, "outcome match: "+strings.Join(outcomeMatched, ", "))
	}
	if tools > 0.5 && len(toolsMatched) > 0 {
		sc.Reasons = append(sc.Reasons, "tools match: "+strings.Join(toolsMatched, ", "))
	}
	if industry > 0.5 && len(industryMatched) > 0 {
		sc.Reasons = append(sc.Reasons, "industry match: "+strings.Join(industryMatched, ", "))
	}
	if certBonus > 0 {
		sc.Reasons = append(sc.Reasons, fmt.Sprintf("verified certification: %s", certTool))
	}
	if len(sc.Reasons) > maxReasons {
		sc.Reasons = sc.Reasons[:maxReasons]
	}

	// flags are independent of reasons
	if req.BudgetMax > 0 && cand.BandMin > req.BudgetMax {
		sc.Flags = append(sc.Flags, FlagBudgetExceedsBand)
	}
	if availability < 0.5 {
		sc.Flags = append(sc.Flags, FlagAvailabilityShortfall)
	}
	if hasUnverifiedToolClaim(req, cand, s) {
		sc.Flags = append(sc.Flags, FlagUnverifiedToolClaim)
	}

	return sc
}

// fractionMatched returns the fraction of required terms with at least one
// normalized match among the declared terms, plus the required terms that
// matched (lowercased, sorted). Zero requirements score a neutral 0.5.
func fractionMatched(required, declared []string, table map[string][]string) (float64, []string) {
	if len(required) == 0 {
		return 0.5, nil
	}

	declaredSet := NormalizeAll(declared, table)
	var matched []string
	for _, term := range required {
		if intersects(Normalize(term, table), declaredSet) {
			matched = append(matched, strings.ToLower(strings.TrimSpace(term)))
		}
	}
	sort.Strings(matched)

	return float64(len(matched)) / float64(len(required)), matched
}

func availabilityScore(req Requirements, cand *models.CandidateProfile) float64 {
	required := req.RequiredHours()
	score := float64(cand.WeeklyHours) / float64(required)
	if score > 1.0 {
		return 1.0
	}
	return score
}

// historyScore is 0 without verified case studies, 0.5 when at least one
// verified case study shares an outcome tag with the brief, else 0.
func historyScore(req Requirements, cand *models.CandidateProfile) float64 {
	required := NormalizeAll(req.OutcomeTags, nil)
	for _, cs := range cand.CaseStudies {
		if !cs.Verified {
			continue
		}
		if intersects(NormalizeAll(cs.OutcomeTags, nil), required) {
			return 0.5
		}
	}
	return 0
}

// certificationBonus applies the flat bonus once when any verified
// certification's tool matches a required tool via normalization.
func certificationBonus(req Requirements, cand *models.CandidateProfile, s Settings) (float64, string) {
	if len(req.Tools) == 0 {
		return 0, ""
	}
	requiredSet := NormalizeAll(req.Tools, s.ToolSynonyms)
	for _, cert := range cand.Certifications {
		if !cert.Verified {
			continue
		}
		if intersects(Normalize(cert.Tool, s.ToolSynonyms), requiredSet) {
			return s.CertBoost, strings.ToLower(strings.TrimSpace(cert.Tool))
		}
	}
	return 0, ""
}

// hasUnverifiedToolClaim reports whether the candidate declares a required
// tool that no verified certification covers.
func hasUnverifiedToolClaim(req Requirements, cand *models.CandidateProfile, s Settings) bool {
	declaredSet := NormalizeAll(cand.Tools, s.ToolSynonyms)
	var certSet map[string]struct{}
	for _, cert := range cand.Certifications {
		if !cert.Verified {
			continue
		}
		if certSet == nil {
			certSet = make(map[string]struct{})
		}
		for k := range Normalize(cert.Tool, s.ToolSynonyms) {
			certSet[k] = struct{}{}
		}
	}

	for _, tool := range req.Tools {
		class := Normalize(tool, s.ToolSynonyms)
		if intersects(class, declaredSet) && !intersects(class, certSet) {
			return true
		}
	}
	return false
}
