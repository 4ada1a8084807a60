package repository

import (
	"context"
	"database/sql"
	"time"
)

// BudgetRepo handles budgets. Spent accumulation goes through AddSpent only.
type BudgetRepo struct {
	db DBTX
}

func NewBudgetRepo(db DBTX) *BudgetRepo {
	return &BudgetRepo{db: db}
}

func (r *BudgetRepo) Upsert(ctx context.Context, b Budget) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO budgets(id, user_id, category_id, limit_cents, spent_cents, period, period_start, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(user_id, category_id) DO UPDATE SET
	 limit_cents=excluded.limit_cents,
	 period=excluded.period,
	 updated_at=CURRENT_TIMESTAMP;
	`, b.ID, b.UserID, b.CategoryID, b.LimitCents, b.SpentCents, b.Period, b.PeriodStart)
	return err
}

// GetByCategory returns the budget for (user, category), or nil when the
// category is unbudgeted.
func (r *BudgetRepo) GetByCategory(ctx context.Context, userID, categoryID string) (*Budget, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, user_id, category_id, limit_cents, spent_cents, period, period_start, created_at, updated_at
	FROM budgets WHERE user_id = ? AND category_id = ?
	`, userID, categoryID)
	return scanBudget(row)
}

// AddSpent accumulates amountCents into spent as a relative update and
// returns the updated row, or nil when no budget matches.
func (r *BudgetRepo) AddSpent(ctx context.Context, userID, categoryID string, amountCents int64) (*Budget, error) {
	row := r.db.QueryRowContext(ctx, `
	UPDATE budgets
	SET spent_cents = spent_cents + ?, updated_at = CURRENT_TIMESTAMP
	WHERE user_id = ? AND category_id = ?
	RETURNING id, user_id, category_id, limit_cents, spent_cents, period, period_start, created_at, updated_at;
	`, amountCents, userID, categoryID)
	return scanBudget(row)
}

func (r *BudgetRepo) List(ctx context.Context, userID string) ([]Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, category_id, limit_cents, spent_cents, period, period_start, created_at, updated_at
	FROM budgets WHERE user_id = ? ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Budget
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.LimitCents, &b.SpentCents, &b.Period, &b.PeriodStart, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// RolloverExpired resets spent and advances period_start for monthly budgets
// whose period ended before currentPeriodStart. Returns rows affected.
func (r *BudgetRepo) RolloverExpired(ctx context.Context, currentPeriodStart time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	UPDATE budgets
	SET spent_cents = 0, period_start = ?, updated_at = CURRENT_TIMESTAMP
	WHERE period = 'monthly' AND period_start < ?;
	`, currentPeriodStart, currentPeriodStart)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanBudget(row *sql.Row) (*Budget, error) {
	var b Budget
	if err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.LimitCents, &b.SpentCents, &b.Period, &b.PeriodStart, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
