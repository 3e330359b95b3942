package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/expertlane/matchd/internal/invites"
	"github.com/expertlane/matchd/internal/matching"
	"github.com/expertlane/matchd/internal/models"
	"github.com/expertlane/matchd/pkg/repository"
	"github.com/gorilla/mux"
)

type InvitesHandler struct {
	svc        *invites.Service
	inviteRepo repository.InviteRepo
}

func NewInvitesHandler(svc *invites.Service, ir repository.InviteRepo) *InvitesHandler {
	return &InvitesHandler{svc: svc, inviteRepo: ir}
}

type createInvitesRequest struct {
	Candidates []matching.CandidateResult `json:"candidates"`
}

// CreateInvites turns a ranked candidate list into sent invites for a brief.
func (h *InvitesHandler) CreateInvites(w http.ResponseWriter, r *http.Request) {
	briefID, err := strconv.ParseInt(mux.Vars(r)["brief_id"], 10, 64)
	if err != nil || briefID <= 0 {
		http.Error(w, "invalid brief_id", http.StatusBadRequest)
		return
	}

	var req createInvitesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Candidates) == 0 {
		http.Error(w, "candidates required", http.StatusBadRequest)
		return
	}
	for _, c := range req.Candidates {
		if c.ExpertID <= 0 {
			http.Error(w, "invalid expert_id in candidates", http.StatusBadRequest)
			return
		}
	}

	res, err := h.svc.CreateInvites(r.Context(), briefID, req.Candidates)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, res, http.StatusCreated)
}

// ListByBrief returns a brief's invites; ?pending=true keeps only invites the
// expert can still respond to.
func (h *InvitesHandler) ListByBrief(w http.ResponseWriter, r *http.Request) {
	briefID, err := strconv.ParseInt(mux.Vars(r)["brief_id"], 10, 64)
	if err != nil || briefID <= 0 {
		http.Error(w, "invalid brief_id", http.StatusBadRequest)
		return
	}

	pending := r.URL.Query().Get("pending") == "true"
	list, err := h.inviteRepo.ListInvitesByBrief(r.Context(), briefID, pending, time.Now().UnixMilli())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if list == nil {
		list = []models.ExpertInvite{}
	}

	writeJSON(w, map[string]any{"items": list}, http.StatusOK)
}

// ListMine returns the calling expert's invites. ?expert_id overrides for
// admin tooling; regular callers rely on the token.
func (h *InvitesHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	expertID := accountIDFromContext(r.Context())
	if s := r.URL.Query().Get("expert_id"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			http.Error(w, "invalid expert_id", http.StatusBadRequest)
			return
		}
		expertID = v
	}
	if expertID <= 0 {
		http.Error(w, "expert_id required", http.StatusBadRequest)
		return
	}

	pending := r.URL.Query().Get("pending") == "true"
	list, err := h.inviteRepo.ListInvitesByExpert(r.Context(), expertID, pending, time.Now().UnixMilli())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if list == nil {
		list = []models.ExpertInvite{}
	}

	writeJSON(w, map[string]any{"items": list}, http.StatusOK)
}

// View stamps first-open time on an invite.
func (h *InvitesHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid invite id", http.StatusBadRequest)
		return
	}

	if err := h.svc.MarkViewed(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type respondRequest struct {
	Action   string          `json:"action"`
	Message  *string         `json:"message,omitempty"`
	Proposal json.RawMessage `json:"proposal,omitempty"`
}

// Respond records an expert's accept or decline.
func (h *InvitesHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid invite id", http.StatusBadRequest)
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	var accept bool
	switch req.Action {
	case "accept":
		accept = true
	case "decline":
		accept = false
	default:
		http.Error(w, "action must be accept or decline", http.StatusBadRequest)
		return
	}

	var proposal *string
	if len(req.Proposal) > 0 {
		if !json.Valid(req.Proposal) {
			http.Error(w, "invalid proposal json", http.StatusBadRequest)
			return
		}
		s := string(req.Proposal)
		proposal = &s
	}
	inv, err := h.svc.Respond(r.Context(), id, accept, req.Message, proposal)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, inv, http.StatusOK)
}
