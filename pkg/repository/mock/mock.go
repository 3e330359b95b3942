package mock

import (
	"context"
	"sync"

	"github.com/expertlane/matchd/internal/models"
	"github.com/expertlane/matchd/pkg/repository"
)

// Hand-rolled in-memory fakes for handler and engine tests.

type BriefRepo struct {
	mu     sync.Mutex
	nextID int64
	Briefs map[int64]*models.Brief
}

func NewBriefRepo() *BriefRepo {
	return &BriefRepo{Briefs: make(map[int64]*models.Brief)}
}

func (m *BriefRepo) CreateBrief(ctx context.Context, b *models.Brief) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *b
	cp.ID = m.nextID
	m.Briefs[cp.ID] = &cp
	return cp.ID, nil
}

func (m *BriefRepo) GetBrief(ctx context.Context, id int64) (*models.Brief, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Briefs[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

type CandidateRepo struct {
	Pool    []models.CandidateProfile
	ListErr error
}

func (m *CandidateRepo) UpsertCandidate(ctx context.Context, c *models.CandidateProfile) error {
	for i := range m.Pool {
		if m.Pool[i].ExpertID == c.ExpertID {
			m.Pool[i] = *c
			return nil
		}
	}
	m.Pool = append(m.Pool, *c)
	return nil
}

func (m *CandidateRepo) GetCandidate(ctx context.Context, expertID int64) (*models.CandidateProfile, error) {
	for i := range m.Pool {
		if m.Pool[i].ExpertID == expertID {
			cp := m.Pool[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *CandidateRepo) ListCandidates(ctx context.Context) ([]models.CandidateProfile, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]models.CandidateProfile, len(m.Pool))
	copy(out, m.Pool)
	return out, nil
}

type MatchingRunRepo struct {
	mu   sync.Mutex
	Runs []models.MatchingRun
}

func (m *MatchingRunRepo) CreateMatchingRun(ctx context.Context, run *models.MatchingRun) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *run
	cp.ID = int64(len(m.Runs) + 1)
	m.Runs = append(m.Runs, cp)
	return cp.ID, nil
}

func (m *MatchingRunRepo) ListRunsByBrief(ctx context.Context, briefID int64) ([]models.MatchingRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MatchingRun
	for _, r := range m.Runs {
		if r.BriefID == briefID {
			out = append(out, r)
		}
	}
	return out, nil
}

type SettingsRepo struct {
	KV map[string]string
}

func (m *SettingsRepo) GetSettings(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.KV))
	for k, v := range m.KV {
		out[k] = v
	}
	return out, nil
}

func (m *SettingsRepo) SetSetting(ctx context.Context, key, value string) error {
	if m.KV == nil {
		m.KV = make(map[string]string)
	}
	m.KV[key] = value
	return nil
}

type NotificationRepo struct {
	mu            sync.Mutex
	Notifications []models.Notification
}

func (m *NotificationRepo) CreateNotification(ctx context.Context, n *models.Notification) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	cp.ID = int64(len(m.Notifications) + 1)
	m.Notifications = append(m.Notifications, cp)
	return cp.ID, nil
}

func (m *NotificationRepo) ListNotifications(ctx context.Context, accountID int64, limit, offset int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.Notifications {
		if n.AccountID == accountID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *NotificationRepo) MarkNotificationRead(ctx context.Context, id int64, now int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Notifications {
		if m.Notifications[i].ID == id && m.Notifications[i].ReadAt == nil {
			m.Notifications[i].ReadAt = &now
		}
	}
	return nil
}

type OutboxRepo struct {
	mu     sync.Mutex
	Emails []models.OutboxEmail
}

func (m *OutboxRepo) CreateOutboxEmail(ctx context.Context, e *models.OutboxEmail) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	cp.ID = int64(len(m.Emails) + 1)
	m.Emails = append(m.Emails, cp)
	return cp.ID, nil
}

func (m *OutboxRepo) MarkOutboxSent(ctx context.Context, id int64, providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Emails {
		if m.Emails[i].ID == id {
			m.Emails[i].Status = models.OutboxSent
			m.Emails[i].ProviderID = &providerID
		}
	}
	return nil
}

func (m *OutboxRepo) MarkOutboxFailed(ctx context.Context, id int64, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Emails {
		if m.Emails[i].ID == id {
			m.Emails[i].Status = models.OutboxFailed
			m.Emails[i].LastError = lastError
		}
	}
	return nil
}

func (m *OutboxRepo) ListOutboxByStatus(ctx context.Context, status string, limit int) ([]models.OutboxEmail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.OutboxEmail
	for _, e := range m.Emails {
		if e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

type InviteRepo struct {
	mu      sync.Mutex
	nextID  int64
	Invites map[int64]*models.ExpertInvite
}

func NewInviteRepo() *InviteRepo {
	return &InviteRepo{Invites: make(map[int64]*models.ExpertInvite)}
}

func (m *InviteRepo) CreateInvite(ctx context.Context, inv *models.ExpertInvite) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Invites {
		if existing.BriefID == inv.BriefID && existing.ExpertID == inv.ExpertID {
			return 0, repository.ErrDuplicateInvite
		}
	}
	m.nextID++
	cp := *inv
	cp.ID = m.nextID
	m.Invites[cp.ID] = &cp
	return cp.ID, nil
}

func (m *InviteRepo) GetInvite(ctx context.Context, id int64) (*models.ExpertInvite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv, ok := m.Invites[id]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, nil
}

func (m *InviteRepo) ListInvitesByBrief(ctx context.Context, briefID int64, pendingOnly bool, now int64) ([]models.ExpertInvite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ExpertInvite
	for _, inv := range m.Invites {
		if inv.BriefID != briefID {
			continue
		}
		if pendingOnly && !inv.Respondable(now) {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (m *InviteRepo) ListInvitesByExpert(ctx context.Context, expertID int64, pendingOnly bool, now int64) ([]models.ExpertInvite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ExpertInvite
	for _, inv := range m.Invites {
		if inv.ExpertID != expertID {
			continue
		}
		if pendingOnly && !inv.Respondable(now) {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (m *InviteRepo) MarkViewed(ctx context.Context, id int64, now int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.Invites[id]
	if !ok {
		return repository.ErrNotFound
	}
	if inv.ViewedAt == nil && inv.Status == models.InviteSent {
		inv.ViewedAt = &now
	}
	return nil
}

func (m *InviteRepo) RespondInvite(ctx context.Context, id int64, status string, now int64, message *string, proposalJSON *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.Invites[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !inv.Respondable(now) {
		return repository.ErrNotRespondable
	}
	inv.Status = status
	inv.RespondedAt = &now
	inv.ResponseMessage = message
	inv.ProposalJSON = proposalJSON
	return nil
}

// SelectionRepo mirrors the sqlite winner finalization over the in-memory
// brief and invite fakes.
type SelectionRepo struct {
	Briefs  *BriefRepo
	Invites *InviteRepo
}

func (m *SelectionRepo) SelectExpert(ctx context.Context, briefID, expertID, now int64) (*repository.SelectionResult, error) {
	return m.finalize(briefID, expertID, now, false)
}

func (m *SelectionRepo) ReassignExpert(ctx context.Context, briefID, expertID, now int64) (*repository.SelectionResult, error) {
	return m.finalize(briefID, expertID, now, true)
}

func (m *SelectionRepo) finalize(briefID, expertID, now int64, reassign bool) (*repository.SelectionResult, error) {
	m.Briefs.mu.Lock()
	defer m.Briefs.mu.Unlock()
	m.Invites.mu.Lock()
	defer m.Invites.mu.Unlock()

	brief, ok := m.Briefs.Briefs[briefID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if !reassign && brief.SelectedExpertID != nil {
		return nil, repository.ErrBriefResolved
	}

	var winner *models.ExpertInvite
	for _, inv := range m.Invites.Invites {
		if inv.BriefID != briefID || inv.ExpertID != expertID {
			continue
		}
		if inv.Status == models.InviteAccepted || (reassign && inv.Status == models.InviteNotSelected) {
			winner = inv
		}
	}
	if winner == nil {
		return nil, repository.ErrInvalidTransition
	}

	if reassign && brief.SelectedExpertID != nil {
		for _, inv := range m.Invites.Invites {
			if inv.BriefID == briefID && inv.Status == models.InviteSelected {
				inv.Status = models.InviteNotSelected
			}
		}
	}
	winner.Status = models.InviteSelected

	res := &repository.SelectionResult{InviteID: winner.ID}
	for _, inv := range m.Invites.Invites {
		if inv.BriefID == briefID && inv.Status == models.InviteAccepted {
			inv.Status = models.InviteNotSelected
			res.LoserExpertIDs = append(res.LoserExpertIDs, inv.ExpertID)
		}
	}

	brief.SelectedExpertID = &expertID
	brief.Status = models.BriefExpertSelected
	brief.Updated = now
	return res, nil
}

type AccountRepo struct {
	mu       sync.Mutex
	Accounts map[int64]*models.Account
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{Accounts: make(map[int64]*models.Account)}
}

func (m *AccountRepo) CreateAccount(ctx context.Context, a *models.Account) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := int64(len(m.Accounts) + 1)
	cp := *a
	cp.ID = id
	m.Accounts[id] = &cp
	return id, nil
}

func (m *AccountRepo) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.Accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *AccountRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}
