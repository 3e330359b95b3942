package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/expertlane/matchd/internal/matching"
	"github.com/expertlane/matchd/internal/models"
	"github.com/expertlane/matchd/pkg/repository"
	"github.com/qri-io/jsonschema"
)

// synonymsSchema constrains the synonym tables to an object mapping canonical
// terms to arrays of alias strings.
var synonymsSchema = []byte(`{
	"type": "object",
	"additionalProperties": {
		"type": "array",
		"items": {"type": "string"}
	}
}`)

var weightKeys = map[string]bool{
	matching.KeyOutcomeWeight:      true,
	matching.KeyToolsWeight:        true,
	matching.KeyIndustryWeight:     true,
	matching.KeyAvailabilityWeight: true,
	matching.KeyHistoryWeight:      true,
	matching.KeyCertBoost:          true,
}

var synonymKeys = map[string]bool{
	matching.KeyToolSynonyms:     true,
	matching.KeyIndustrySynonyms: true,
}

type SettingsHandler struct {
	settingsRepo repository.SettingsRepo
}

func NewSettingsHandler(sr repository.SettingsRepo) *SettingsHandler {
	return &SettingsHandler{settingsRepo: sr}
}

// Get returns the raw settings rows plus the effective parsed configuration.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if roleFromContext(r.Context()) != models.RoleAdmin {
		http.Error(w, "admin role required", http.StatusForbidden)
		return
	}

	kv, err := h.settingsRepo.GetSettings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"settings":  kv,
		"effective": matching.ParseSettings(kv),
	}, http.StatusOK)
}

// Put validates and stores a batch of settings keys. Unknown keys are
// rejected so typos do not silently become dead rows.
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	if roleFromContext(r.Context()) != models.RoleAdmin {
		http.Error(w, "admin role required", http.StatusForbidden)
		return
	}

	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if len(updates) == 0 {
		http.Error(w, "no settings provided", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	for key, value := range updates {
		if err := validateSetting(ctx, key, value); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	for key, value := range updates {
		if err := h.settingsRepo.SetSetting(ctx, key, value); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	kv, err := h.settingsRepo.GetSettings(ctx)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"settings":  kv,
		"effective": matching.ParseSettings(kv),
	}, http.StatusOK)
}

func validateSetting(ctx context.Context, key, value string) error {
	switch {
	case weightKeys[key]:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: not a number", key)
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("%s: must be between 0 and 1", key)
		}
	case synonymKeys[key]:
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(synonymsSchema, rs); err != nil {
			return fmt.Errorf("%s: compile schema: %w", key, err)
		}
		errs, err := rs.ValidateBytes(ctx, []byte(value))
		if err != nil {
			return fmt.Errorf("%s: invalid json", key)
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s: %s", key, errs[0].Error())
		}
	default:
		return fmt.Errorf("unknown settings key %q", key)
	}
	return nil
}
