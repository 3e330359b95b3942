package repository

import (
	"context"

	"github.com/expertlane/matchd/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

type AccountRepo interface {
	CreateAccount(ctx context.Context, a *models.Account) (int64, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

type BriefRepo interface {
	CreateBrief(ctx context.Context, b *models.Brief) (int64, error)
	GetBrief(ctx context.Context, id int64) (*models.Brief, error)
}

type CandidateRepo interface {
	UpsertCandidate(ctx context.Context, c *models.CandidateProfile) error
	GetCandidate(ctx context.Context, expertID int64) (*models.CandidateProfile, error)
	ListCandidates(ctx context.Context) ([]models.CandidateProfile, error)
}

type MatchingRunRepo interface {
	CreateMatchingRun(ctx context.Context, run *models.MatchingRun) (int64, error)
	ListRunsByBrief(ctx context.Context, briefID int64) ([]models.MatchingRun, error)
}

type InviteRepo interface {
	// CreateInvite returns ErrDuplicateInvite when the (brief, expert)
	// pair already has a row.
	CreateInvite(ctx context.Context, inv *models.ExpertInvite) (int64, error)
	GetInvite(ctx context.Context, id int64) (*models.ExpertInvite, error)
	ListInvitesByBrief(ctx context.Context, briefID int64, pendingOnly bool, now int64) ([]models.ExpertInvite, error)
	ListInvitesByExpert(ctx context.Context, expertID int64, pendingOnly bool, now int64) ([]models.ExpertInvite, error)
	// MarkViewed sets viewed_at once; later calls are no-ops.
	MarkViewed(ctx context.Context, id int64, now int64) error
	// RespondInvite transitions sent -> accepted|declined, guarded in SQL by
	// status and expiry. Returns ErrNotFound or ErrNotRespondable.
	RespondInvite(ctx context.Context, id int64, status string, now int64, message *string, proposalJSON *string) error
}

// SelectionResult reports the outcome of a winner finalization so callers can
// notify the losers.
type SelectionResult struct {
	InviteID       int64   `json:"invite_id"`
	LoserExpertIDs []int64 `json:"loser_expert_ids"`
}

type SelectionRepo interface {
	// SelectExpert atomically finalizes the winner: promotes the accepted
	// invite, demotes accepted siblings, sets the brief's winner. Returns
	// ErrBriefResolved when a winner already exists, ErrInvalidTransition
	// when the invite is not accepted, ErrNotFound for a missing brief.
	SelectExpert(ctx context.Context, briefID, expertID, now int64) (*SelectionResult, error)
	// ReassignExpert replaces an existing winner through the same atomic
	// path; the previous winner's invite becomes not_selected.
	ReassignExpert(ctx context.Context, briefID, expertID, now int64) (*SelectionResult, error)
}

type SettingsRepo interface {
	GetSettings(ctx context.Context) (map[string]string, error)
	SetSetting(ctx context.Context, key, value string) error
}

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *models.Notification) (int64, error)
	ListNotifications(ctx context.Context, accountID int64, limit, offset int) ([]models.Notification, error)
	// MarkNotificationRead sets read_at once; later calls are no-ops.
	MarkNotificationRead(ctx context.Context, id int64, now int64) error
}

type OutboxRepo interface {
	CreateOutboxEmail(ctx context.Context, e *models.OutboxEmail) (int64, error)
	MarkOutboxSent(ctx context.Context, id int64, providerID string) error
	MarkOutboxFailed(ctx context.Context, id int64, lastError string) error
	ListOutboxByStatus(ctx context.Context, status string, limit int) ([]models.OutboxEmail, error)
}

type JobRepo interface {
	Enqueue(ctx context.Context, j *models.BackgroundJob) (int64, error)
	FetchNext(ctx context.Context) (*models.BackgroundJob, error)
	UpdateJob(ctx context.Context, j *models.BackgroundJob) error
	MoveToDeadLetter(ctx context.Context, j *models.BackgroundJob) error
}
