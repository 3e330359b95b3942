package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expertlane/matchd/internal/models"
	"github.com/expertlane/matchd/pkg/repository"
)

const inviteColumns = `id, brief_id, expert_id, status, score_at_invite, sent_at, expires_at, viewed_at, responded_at, response_message, proposal_json`

// CreateInvite inserts one invite row. The UNIQUE(brief_id, expert_id)
// constraint backs the one-invite-per-pair invariant; a duplicate attempt
// returns ErrDuplicateInvite without touching the existing row.
func (r *SQLiteRepo) CreateInvite(ctx context.Context, inv *models.ExpertInvite) (int64, error) {
	if inv == nil {
		return 0, fmt.Errorf("invite is nil")
	}
	if inv.Status == "" {
		inv.Status = models.InviteSent
	}

	res, err := r.conn.Exec(ctx, `INSERT OR IGNORE INTO expert_invites (brief_id, expert_id, status, score_at_invite, sent_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)`,
		inv.BriefID, inv.ExpertID, inv.Status, inv.ScoreAtInvite, inv.SentAt, inv.ExpiresAt)
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, repository.ErrDuplicateInvite
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetInvite(ctx context.Context, id int64) (*models.ExpertInvite, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+inviteColumns+` FROM expert_invites WHERE id = ?`, id)

	inv, err := scanInvite(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return inv, nil
}

func (r *SQLiteRepo) ListInvitesByBrief(ctx context.Context, briefID int64, pendingOnly bool, nowMilli int64) ([]models.ExpertInvite, error) {
	q := `SELECT ` + inviteColumns + ` FROM expert_invites WHERE brief_id = ?`
	args := []any{briefID}
	if pendingOnly {
		// expiry is derived state: expired sent invites are not pending
		q += ` AND status = 'sent' AND expires_at > ?`
		args = append(args, nowMilli)
	}
	q += ` ORDER BY score_at_invite DESC, expert_id ASC`

	return r.listInvites(ctx, q, args...)
}

func (r *SQLiteRepo) ListInvitesByExpert(ctx context.Context, expertID int64, pendingOnly bool, nowMilli int64) ([]models.ExpertInvite, error) {
	q := `SELECT ` + inviteColumns + ` FROM expert_invites WHERE expert_id = ?`
	args := []any{expertID}
	if pendingOnly {
		q += ` AND status = 'sent' AND expires_at > ?`
		args = append(args, nowMilli)
	}
	q += ` ORDER BY sent_at DESC`

	return r.listInvites(ctx, q, args...)
}

func (r *SQLiteRepo) listInvites(ctx context.Context, q string, args ...any) ([]models.ExpertInvite, error) {
	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ExpertInvite
	for rows.Next() {
		inv, err := scanInvite(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}

	return out, rows.Err()
}

// MarkViewed sets viewed_at once, the first time the invite is opened while
// still sent. Later calls leave the original value in place.
func (r *SQLiteRepo) MarkViewed(ctx context.Context, id int64, nowMilli int64) error {
	res, err := r.conn.Exec(ctx, `UPDATE expert_invites SET viewed_at = ? WHERE id = ? AND viewed_at IS NULL AND status = 'sent'`, nowMilli, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// no-op for already-viewed or resolved invites; missing rows fail
		inv, err := r.GetInvite(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return repository.ErrNotFound
		}
	}

	return nil
}

// RespondInvite transitions sent -> accepted|declined. The guard is in the
// UPDATE itself so a response racing expiry or resolution cannot slip through.
func (r *SQLiteRepo) RespondInvite(ctx context.Context, id int64, status string, nowMilli int64, message *string, proposalJSON *string) error {
	if status != models.InviteAccepted && status != models.InviteDeclined {
		return fmt.Errorf("respond status %q: %w", status, repository.ErrInvalidTransition)
	}

	res, err := r.conn.Exec(ctx, `UPDATE expert_invites SET status = ?, responded_at = ?, response_message = ?, proposal_json = ? WHERE id = ? AND status = 'sent' AND expires_at > ?`,
		status, nowMilli, message, proposalJSON, id, nowMilli)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		inv, err := r.GetInvite(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return repository.ErrNotFound
		}

		return repository.ErrNotRespondable
	}

	return nil
}

func scanInvite(scan func(dest ...any) error) (*models.ExpertInvite, error) {
	var inv models.ExpertInvite
	var viewed, responded sql.NullInt64
	var message, proposal sql.NullString
	if err := scan(&inv.ID, &inv.BriefID, &inv.ExpertID, &inv.Status, &inv.ScoreAtInvite, &inv.SentAt, &inv.ExpiresAt, &viewed, &responded, &message, &proposal); err != nil {
		return nil, err
	}

	if viewed.Valid {
		inv.ViewedAt = &viewed.Int64
	}
	if responded.Valid {
		inv.RespondedAt = &responded.Int64
	}
	if message.Valid {
		inv.ResponseMessage = &message.String
	}
	if proposal.Valid {
		inv.ProposalJSON = &proposal.String
	}

	return &inv, nil
}
