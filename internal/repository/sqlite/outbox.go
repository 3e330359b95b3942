package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expertlane/matchd/internal/models"
)

func (r *SQLiteRepo) CreateOutboxEmail(ctx context.Context, e *models.OutboxEmail) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("outbox email is nil")
	}
	if e.Status == "" {
		e.Status = models.OutboxQueued
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO outbox_emails (event_type, account_id, recipient, subject, body, status, attempts, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EventType, e.AccountID, e.Recipient, e.Subject, e.Body, e.Status, e.Attempts, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) MarkOutboxSent(ctx context.Context, id int64, providerID string) error {
	_, err := r.conn.Exec(ctx, `UPDATE outbox_emails SET status = 'sent', provider_id = ?, attempts = attempts + 1, updated = ? WHERE id = ?`,
		providerID, now(), id)
	return err
}

func (r *SQLiteRepo) MarkOutboxFailed(ctx context.Context, id int64, lastError string) error {
	_, err := r.conn.Exec(ctx, `UPDATE outbox_emails SET status = 'failed', last_error = ?, attempts = attempts + 1, updated = ? WHERE id = ?`,
		lastError, now(), id)
	return err
}

func (r *SQLiteRepo) ListOutboxByStatus(ctx context.Context, status string, limit int) ([]models.OutboxEmail, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, event_type, account_id, recipient, subject, body, status, provider_id, last_error, attempts, created, updated FROM outbox_emails WHERE status = ? ORDER BY id LIMIT ?`,
		status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OutboxEmail
	for rows.Next() {
		var e models.OutboxEmail
		var provider, lastErr sql.NullString
		if err := rows.Scan(&e.ID, &e.EventType, &e.AccountID, &e.Recipient, &e.Subject, &e.Body, &e.Status, &provider, &lastErr, &e.Attempts, &e.Created, &e.Updated); err != nil {
			return nil, err
		}
		if provider.Valid {
			e.ProviderID = &provider.String
		}
		if lastErr.Valid {
			e.LastError = lastErr.String
		}
		out = append(out, e)
	}

	return out, rows.Err()
}
