package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expertlane/matchd/internal/models"
)

func (r *SQLiteRepo) CreateNotification(ctx context.Context, n *models.Notification) (int64, error) {
	if n == nil {
		return 0, fmt.Errorf("notification is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO notifications (account_id, title, body, action_url, created) VALUES (?, ?, ?, ?, ?)`,
		n.AccountID, n.Title, n.Body, n.ActionURL, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListNotifications(ctx context.Context, accountID int64, limit, offset int) ([]models.Notification, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, account_id, title, body, action_url, read_at, created FROM notifications WHERE account_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`,
		accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		var action sql.NullString
		var readAt sql.NullInt64
		if err := rows.Scan(&n.ID, &n.AccountID, &n.Title, &n.Body, &action, &readAt, &n.Created); err != nil {
			return nil, err
		}
		if action.Valid {
			n.ActionURL = action.String
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Int64
		}
		out = append(out, n)
	}

	return out, rows.Err()
}

// MarkNotificationRead is set-once: re-reading never moves read_at.
func (r *SQLiteRepo) MarkNotificationRead(ctx context.Context, id int64, nowMilli int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE notifications SET read_at = ? WHERE id = ? AND read_at IS NULL`, nowMilli, id)
	return err
}
