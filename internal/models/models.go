package models

import (
	"encoding/json"
	"time"
)

type Account struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name" validate:"required"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	Role         string `json:"role" db:"role"`
	Updated      int64  `json:"updated" db:"updated"`
	PasswordHash string `json:"password_hash,omitempty" db:"password_hash"`
}

// Account roles.
const (
	RoleClient = "client"
	RoleExpert = "expert"
	RoleAdmin  = "admin"
)

// Brief is a client's structured statement of need. RequirementsJSON holds the
// loosely-typed requirement document authored by the brief flow; the matching
// engine reads it through a dedicated parser, never directly.
type Brief struct {
	ID               int64  `json:"id" db:"id"`
	ClientID         int64  `json:"client_id" db:"client_id"`
	Title            string `json:"title" db:"title"`
	RequirementsJSON string `json:"requirements_json" db:"requirements_json"`
	Status           string `json:"status" db:"status"`
	SelectedExpertID *int64 `json:"selected_expert_id,omitempty" db:"selected_expert_id"`
	Created          int64  `json:"created" db:"created"`
	Updated          int64  `json:"updated" db:"updated"`
}

// Brief lifecycle statuses.
const (
	BriefSubmitted      = "submitted"
	BriefProposalReady  = "proposal_ready"
	BriefExpertSelected = "expert_selected"
)

type Certification struct {
	Tool     string `json:"tool"`
	Verified bool   `json:"verified"`
}

type CaseStudy struct {
	OutcomeTags []string `json:"outcome_tags"`
	Verified    bool     `json:"verified"`
}

// CandidateProfile is an expert's declared capability set. Read-only to the
// matching core; owned by the expert-facing profile flow.
type CandidateProfile struct {
	ExpertID       int64           `json:"expert_id" db:"expert_id"`
	Outcomes       []string        `json:"outcomes"`
	Tools          []string        `json:"tools"`
	Industries     []string        `json:"industries"`
	WeeklyHours    int             `json:"weekly_hours" db:"weekly_hours"`
	BandMin        float64         `json:"band_min" db:"band_min"`
	BandMax        float64         `json:"band_max" db:"band_max"`
	Certifications []Certification `json:"certifications"`
	CaseStudies    []CaseStudy     `json:"case_studies"`
	Updated        int64           `json:"updated" db:"updated"`
}

// MatchingRun is an immutable audit record of one ranking pass.
type MatchingRun struct {
	ID          int64   `json:"id" db:"id"`
	BriefID     int64   `json:"brief_id" db:"brief_id"`
	MinScore    float64 `json:"min_score" db:"min_score"`
	Widen       bool    `json:"widen" db:"widen"`
	WeightsJSON string  `json:"weights_json" db:"weights_json"`
	PoolSize    int     `json:"pool_size" db:"pool_size"`
	ResultCount int     `json:"result_count" db:"result_count"`
	Created     int64   `json:"created" db:"created"`
}

// ExpertInvite statuses. Expiry is derived, not a status: a sent invite past
// its expires_at is non-respondable but keeps status "sent".
const (
	InviteSent        = "sent"
	InviteAccepted    = "accepted"
	InviteDeclined    = "declined"
	InviteSelected    = "selected"
	InviteNotSelected = "not_selected"
)

// ExpertInvite is one candidate being offered one brief. ScoreAtInvite is
// frozen at creation; later re-scoring never alters it. Rows are never
// deleted (audit).
type ExpertInvite struct {
	ID              int64   `json:"id" db:"id"`
	BriefID         int64   `json:"brief_id" db:"brief_id"`
	ExpertID        int64   `json:"expert_id" db:"expert_id"`
	Status          string  `json:"status" db:"status"`
	ScoreAtInvite   float64 `json:"score_at_invite" db:"score_at_invite"`
	SentAt          int64   `json:"sent_at" db:"sent_at"`
	ExpiresAt       int64   `json:"expires_at" db:"expires_at"`
	ViewedAt        *int64  `json:"viewed_at,omitempty" db:"viewed_at"`
	RespondedAt     *int64  `json:"responded_at,omitempty" db:"responded_at"`
	ResponseMessage *string `json:"response_message,omitempty" db:"response_message"`
	ProposalJSON    *string `json:"proposal_json,omitempty" db:"proposal_json"`
}

// Respondable reports whether an expert may still accept or decline at the
// given unix-milli instant.
func (i *ExpertInvite) Respondable(now int64) bool {
	return i.Status == InviteSent && now < i.ExpiresAt
}

type Notification struct {
	ID        int64  `json:"id" db:"id"`
	AccountID int64  `json:"account_id" db:"account_id"`
	Title     string `json:"title" db:"title"`
	Body      string `json:"body" db:"body"`
	ActionURL string `json:"action_url,omitempty" db:"action_url"`
	ReadAt    *int64 `json:"read_at,omitempty" db:"read_at"`
	Created   int64  `json:"created" db:"created"`
}

// Outbox email statuses.
const (
	OutboxQueued = "queued"
	OutboxSent   = "sent"
	OutboxFailed = "failed"
)

// OutboxEmail records one rendered email per recipient per event. Delivery
// outcome is tracked here and never propagated as a business error.
type OutboxEmail struct {
	ID         int64   `json:"id" db:"id"`
	EventType  string  `json:"event_type" db:"event_type"`
	AccountID  int64   `json:"account_id" db:"account_id"`
	Recipient  string  `json:"recipient" db:"recipient"`
	Subject    string  `json:"subject" db:"subject"`
	Body       string  `json:"body" db:"body"`
	Status     string  `json:"status" db:"status"`
	ProviderID *string `json:"provider_id,omitempty" db:"provider_id"`
	LastError  string  `json:"last_error,omitempty" db:"last_error"`
	Attempts   int     `json:"attempts" db:"attempts"`
	Created    int64   `json:"created" db:"created"`
	Updated    int64   `json:"updated" db:"updated"`
}

type BackgroundJob struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Priority    int             `json:"priority"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}
