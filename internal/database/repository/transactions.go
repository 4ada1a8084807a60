package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// TransactionFilters defines list filters.
type TransactionFilters struct {
	AccountID  string
	CategoryID string
	Type       TransactionType
	From       time.Time
	To         time.Time
	Search     string
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db DBTX
}

func NewTransactionRepo(db DBTX) *TransactionRepo { return &TransactionRepo{db: db} }

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(id, user_id, account_id, category_id, type, amount_cents, description, date, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, t.ID, t.UserID, t.AccountID, t.CategoryID, t.Type, t.AmountCents, t.Description, t.Date)
	return err
}

func (r *TransactionRepo) Get(ctx context.Context, id string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, user_id, account_id, category_id, type, amount_cents, description, date, created_at
	FROM transactions WHERE id = ?
	`, id)
	var t Transaction
	if err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Type, &t.AmountCents, &t.Description, &t.Date, &t.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepo) List(ctx context.Context, userID string, f TransactionFilters) ([]Transaction, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{userID}

	if f.AccountID != "" {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, f.Type)
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		where = append(where, "date < ?")
		args = append(args, f.To)
	}
	if f.Search != "" {
		where = append(where, "description LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	query := "SELECT id, user_id, account_id, category_id, type, amount_cents, description, date, created_at FROM transactions WHERE " +
		strings.Join(where, " AND ") + " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Type, &t.AmountCents, &t.Description, &t.Date, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SignedSumForRange returns income minus expense magnitudes over [from, to)
// for a user, i.e. the net flow in that window.
func (r *TransactionRepo) SignedSumForRange(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT COALESCE(SUM(CASE WHEN type = 'Income' THEN amount_cents ELSE -amount_cents END), 0)
	FROM transactions WHERE user_id = ? AND date >= ? AND date < ?
	`, userID, from, to)
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// RecentNear returns the user's transactions dated within the window around
// date with the given magnitude, used for duplicate-suspect detection.
func (r *TransactionRepo) RecentNear(ctx context.Context, userID string, amountCents int64, date time.Time, window time.Duration) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, account_id, category_id, type, amount_cents, description, date, created_at
	FROM transactions
	WHERE user_id = ? AND amount_cents = ? AND date >= ? AND date < ?
	`, userID, amountCents, date.Add(-window), date.Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Type, &t.AmountCents, &t.Description, &t.Date, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
