package sqlite

import (
	"context"
)

func (r *SQLiteRepo) GetSettings(ctx context.Context) (map[string]string, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.conn.Exec(ctx, `INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}
