package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expertlane/matchd/pkg/repository"
)

// SelectExpert finalizes exactly one winner for a brief. The whole effect is
// one transaction whose first statement is a conditional UPDATE on
// briefs.selected_expert_id IS NULL: of two racing selections only one can
// match, the other observes zero rows and gets ErrBriefResolved.
func (r *SQLiteRepo) SelectExpert(ctx context.Context, briefID, expertID, nowMilli int64) (*repository.SelectionResult, error) {
	return r.finalizeWinner(ctx, briefID, expertID, nowMilli, false)
}

// ReassignExpert replaces an already-finalized winner through the same
// transaction shape, so the at-most-one-winner invariant holds for admin
// actions too. The previous winner's invite is demoted to not_selected.
func (r *SQLiteRepo) ReassignExpert(ctx context.Context, briefID, expertID, nowMilli int64) (*repository.SelectionResult, error) {
	return r.finalizeWinner(ctx, briefID, expertID, nowMilli, true)
}

func (r *SQLiteRepo) finalizeWinner(ctx context.Context, briefID, expertID, nowMilli int64, reassign bool) (*repository.SelectionResult, error) {
	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin selection tx: %w", err)
	}
	defer tx.Rollback()

	var res sql.Result
	if reassign {
		res, err = tx.ExecContext(ctx, `UPDATE briefs SET selected_expert_id = ?, status = 'expert_selected', updated = ? WHERE id = ?`,
			expertID, nowMilli, briefID)
	} else {
		res, err = tx.ExecContext(ctx, `UPDATE briefs SET selected_expert_id = ?, status = 'expert_selected', updated = ? WHERE id = ? AND selected_expert_id IS NULL`,
			expertID, nowMilli, briefID)
	}
	if err != nil {
		return nil, fmt.Errorf("claim brief %d: %w", briefID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM briefs WHERE id = ?`, briefID).Scan(&exists); err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, repository.ErrNotFound
		}

		return nil, repository.ErrBriefResolved
	}

	// demote the previous winner, if any (reassignment only; a fresh
	// selection cannot have one past the conditional claim above)
	if reassign {
		if _, err := tx.ExecContext(ctx, `UPDATE expert_invites SET status = 'not_selected' WHERE brief_id = ? AND status = 'selected' AND expert_id <> ?`,
			briefID, expertID); err != nil {
			return nil, fmt.Errorf("demote previous winner: %w", err)
		}
	}

	// promote the winner's invite; selection requires a prior acceptance,
	// except that admins may re-promote an invite demoted by an earlier
	// selection on the same brief
	promoteFrom := `'accepted'`
	if reassign {
		promoteFrom = `'accepted', 'not_selected'`
	}
	res, err = tx.ExecContext(ctx, `UPDATE expert_invites SET status = 'selected' WHERE brief_id = ? AND expert_id = ? AND status IN (`+promoteFrom+`)`,
		briefID, expertID)
	if err != nil {
		return nil, fmt.Errorf("promote winner invite: %w", err)
	}
	affected, err = res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, repository.ErrInvalidTransition
	}

	var result repository.SelectionResult
	if err := tx.QueryRowContext(ctx, `SELECT id FROM expert_invites WHERE brief_id = ? AND expert_id = ?`, briefID, expertID).Scan(&result.InviteID); err != nil {
		return nil, err
	}

	// siblings still in accepted become not_selected
	rows, err := tx.QueryContext(ctx, `SELECT expert_id FROM expert_invites WHERE brief_id = ? AND status = 'accepted'`, briefID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var loser int64
		if err := rows.Scan(&loser); err != nil {
			rows.Close()
			return nil, err
		}
		result.LoserExpertIDs = append(result.LoserExpertIDs, loser)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `UPDATE expert_invites SET status = 'not_selected' WHERE brief_id = ? AND status = 'accepted'`, briefID); err != nil {
		return nil, fmt.Errorf("demote accepted siblings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit selection: %w", err)
	}

	return &result, nil
}
