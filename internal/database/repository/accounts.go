package repository

import (
	"context"
	"database/sql"
)

// AccountRepo handles accounts.
type AccountRepo struct {
	db DBTX
}

func NewAccountRepo(db DBTX) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Insert(ctx context.Context, a Account) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(id, user_id, name, kind, balance_cents, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, a.ID, a.UserID, a.Name, a.Kind, a.BalanceCents)
	return err
}

// GetByName does a case-sensitive exact match scoped to one user.
func (r *AccountRepo) GetByName(ctx context.Context, userID, name string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, user_id, name, kind, balance_cents, created_at, updated_at
	FROM accounts WHERE user_id = ? AND name = ?
	`, userID, name)
	var a Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Kind, &a.BalanceCents, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) Get(ctx context.Context, id string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, user_id, name, kind, balance_cents, created_at, updated_at
	FROM accounts WHERE id = ?
	`, id)
	var a Account
	if err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Kind, &a.BalanceCents, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ApplyDelta adds deltaCents to the account balance as a relative update and
// returns the post-update balance. A stale read can never overwrite a
// concurrent write because the addition happens inside the statement.
func (r *AccountRepo) ApplyDelta(ctx context.Context, id string, deltaCents int64) (int64, error) {
	row := r.db.QueryRowContext(ctx, `
	UPDATE accounts
	SET balance_cents = balance_cents + ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?
	RETURNING balance_cents;
	`, deltaCents, id)
	var balance int64
	if err := row.Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *AccountRepo) List(ctx context.Context, userID string) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, name, kind, balance_cents, created_at, updated_at
	FROM accounts WHERE user_id = ? ORDER BY name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Kind, &a.BalanceCents, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// NetBalance sums balances across all of a user's accounts.
func (r *AccountRepo) NetBalance(ctx context.Context, userID string) (int64, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT COALESCE(SUM(balance_cents), 0) FROM accounts WHERE user_id = ?
	`, userID)
	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
