package repository

import (
	"context"
	"database/sql"
	"time"
)

// BillRepo handles recurring bills.
type BillRepo struct {
	db DBTX
}

func NewBillRepo(db DBTX) *BillRepo {
	return &BillRepo{db: db}
}

func (r *BillRepo) Upsert(ctx context.Context, b Bill) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO bills(id, user_id, name, amount_cents, due_day, next_due, paid, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(user_id, name) DO UPDATE SET
	 amount_cents=excluded.amount_cents,
	 due_day=excluded.due_day,
	 next_due=excluded.next_due,
	 updated_at=CURRENT_TIMESTAMP;
	`, b.ID, b.UserID, b.Name, b.AmountCents, b.DueDay, b.NextDue, b.Paid)
	return err
}

func (r *BillRepo) List(ctx context.Context, userID string) ([]Bill, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, name, amount_cents, due_day, next_due, paid, created_at, updated_at
	FROM bills WHERE user_id = ? ORDER BY next_due
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Bill
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.AmountCents, &b.DueDay, &b.NextDue, &b.Paid, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Unpaid returns the user's unpaid bills matching an exact amount.
func (r *BillRepo) Unpaid(ctx context.Context, userID string, amountCents int64) ([]Bill, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, name, amount_cents, due_day, next_due, paid, created_at, updated_at
	FROM bills WHERE user_id = ? AND paid = 0 AND amount_cents = ? ORDER BY next_due
	`, userID, amountCents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Bill
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.AmountCents, &b.DueDay, &b.NextDue, &b.Paid, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BillRepo) MarkPaid(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE bills SET paid = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// AdvanceDue moves paid bills past their due date into the next cycle and
// clears the paid flag. Returns rows affected.
func (r *BillRepo) AdvanceDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	UPDATE bills
	SET next_due = DATE(next_due, '+1 month'), paid = 0, updated_at = CURRENT_TIMESTAMP
	WHERE paid = 1 AND next_due <= ?;
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *BillRepo) Get(ctx context.Context, id string) (*Bill, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, user_id, name, amount_cents, due_day, next_due, paid, created_at, updated_at
	FROM bills WHERE id = ?
	`, id)
	var b Bill
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.AmountCents, &b.DueDay, &b.NextDue, &b.Paid, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
