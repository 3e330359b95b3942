package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/expertlane/matchd/internal/invites"
	"github.com/expertlane/matchd/internal/models"
	"github.com/gorilla/mux"
)

type SelectionHandler struct {
	svc *invites.Service
}

func NewSelectionHandler(svc *invites.Service) *SelectionHandler {
	return &SelectionHandler{svc: svc}
}

type selectRequest struct {
	ExpertID int64 `json:"expert_id"`
}

// Select finalizes the winner for a brief. Exactly one selection can ever
// succeed; a second attempt gets 409.
func (h *SelectionHandler) Select(w http.ResponseWriter, r *http.Request) {
	briefID, err := strconv.ParseInt(mux.Vars(r)["brief_id"], 10, 64)
	if err != nil || briefID <= 0 {
		http.Error(w, "invalid brief_id", http.StatusBadRequest)
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExpertID <= 0 {
		http.Error(w, "expert_id required", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Select(r.Context(), briefID, req.ExpertID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, res, http.StatusOK)
}

// Reassign replaces a finalized winner. Admin only.
func (h *SelectionHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	if roleFromContext(r.Context()) != models.RoleAdmin {
		http.Error(w, "admin role required", http.StatusForbidden)
		return
	}

	briefID, err := strconv.ParseInt(mux.Vars(r)["brief_id"], 10, 64)
	if err != nil || briefID <= 0 {
		http.Error(w, "invalid brief_id", http.StatusBadRequest)
		return
	}

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExpertID <= 0 {
		http.Error(w, "expert_id required", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Reassign(r.Context(), briefID, req.ExpertID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, res, http.StatusOK)
}
