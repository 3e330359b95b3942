package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expertlane/matchd/internal/models"
)

func (r *SQLiteRepo) CreateAccount(ctx context.Context, a *models.Account) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("account is nil")
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO accounts (name, email, role, password_hash, updated) VALUES (?, ?, ?, ?, ?)`,
		a.Name, a.Email, a.Role, a.PasswordHash, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.scanAccount(r.conn.QueryRow(ctx, `SELECT id, name, email, role, password_hash, updated FROM accounts WHERE id = ?`, id))
}

func (r *SQLiteRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.scanAccount(r.conn.QueryRow(ctx, `SELECT id, name, email, role, password_hash, updated FROM accounts WHERE email = ?`, email))
}

func (r *SQLiteRepo) scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	var pw sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Role, &pw, &a.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	if pw.Valid {
		a.PasswordHash = pw.String
	}

	return &a, nil
}
