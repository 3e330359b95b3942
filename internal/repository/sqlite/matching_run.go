package sqlite

import (
	"context"
	"fmt"

	"github.com/expertlane/matchd/internal/models"
)

// Matching runs are append-only audit rows; there is no update or delete.

func (r *SQLiteRepo) CreateMatchingRun(ctx context.Context, run *models.MatchingRun) (int64, error) {
	if run == nil {
		return 0, fmt.Errorf("matching run is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO matching_runs (brief_id, min_score, widen, weights_json, pool_size, result_count, created) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.BriefID, run.MinScore, boolToInt(run.Widen), run.WeightsJSON, run.PoolSize, run.ResultCount, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListRunsByBrief(ctx context.Context, briefID int64) ([]models.MatchingRun, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, brief_id, min_score, widen, weights_json, pool_size, result_count, created FROM matching_runs WHERE brief_id = ? ORDER BY id DESC`, briefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MatchingRun
	for rows.Next() {
		var m models.MatchingRun
		var widen int
		if err := rows.Scan(&m.ID, &m.BriefID, &m.MinScore, &widen, &m.WeightsJSON, &m.PoolSize, &m.ResultCount, &m.Created); err != nil {
			return nil, err
		}
		m.Widen = widen != 0
		out = append(out, m)
	}

	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
