package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expertlane/matchd/internal/models"
)

func (r *SQLiteRepo) CreateBrief(ctx context.Context, b *models.Brief) (int64, error) {
	if b == nil {
		return 0, fmt.Errorf("brief is nil")
	}
	if b.Status == "" {
		b.Status = models.BriefSubmitted
	}
	if b.RequirementsJSON == "" {
		b.RequirementsJSON = "{}"
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO briefs (client_id, title, requirements_json, status, created, updated) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ClientID, b.Title, b.RequirementsJSON, b.Status, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetBrief(ctx context.Context, id int64) (*models.Brief, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, client_id, title, requirements_json, status, selected_expert_id, created, updated FROM briefs WHERE id = ?`, id)
	var b models.Brief
	var selected sql.NullInt64
	if err := row.Scan(&b.ID, &b.ClientID, &b.Title, &b.RequirementsJSON, &b.Status, &selected, &b.Created, &b.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	if selected.Valid {
		b.SelectedExpertID = &selected.Int64
	}

	return &b, nil
}
