package repository

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx. Repos are constructed over
// it so the orchestrator can run every statement of one ingestion inside a
// single transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TransactionType is the direction of a transaction. The sign applied to the
// account balance derives from this, never from the stored amount.
type TransactionType string

const (
	TypeIncome  TransactionType = "Income"
	TypeExpense TransactionType = "Expense"
)

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// AccountKind distinguishes everyday accounts from savings.
type AccountKind string

const (
	KindNormal  AccountKind = "normal"
	KindSavings AccountKind = "savings"
)

// Account represents an account row. Balance is a cached running total,
// mutated only through AccountRepo.ApplyDelta.
type Account struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Name         string      `json:"name"`
	Kind         AccountKind `json:"kind"`
	BalanceCents int64       `json:"balance_cents"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Category represents a category row. Two levels: parent rows have a nil
// ParentID, subcategory rows point at their parent.
type Category struct {
	ID        string  `json:"id"`
	ParentID  *string `json:"parent_id,omitempty"`
	Name      string  `json:"name"`
	SortOrder int     `json:"sort_order"`
}

// Budget represents a per-(user, category) spending limit with a running
// spent accumulator over the current period.
type Budget struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CategoryID  string    `json:"category_id"`
	LimitCents  int64     `json:"limit_cents"`
	SpentCents  int64     `json:"spent_cents"`
	Period      string    `json:"period"`
	PeriodStart time.Time `json:"period_start"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Bill represents a recurring obligation.
type Bill struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	AmountCents int64     `json:"amount_cents"`
	DueDay      int       `json:"due_day"`
	NextDue     time.Time `json:"next_due"`
	Paid        bool      `json:"paid"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Transaction represents a committed transaction row. AmountCents is always
// a positive magnitude; Type fixes the sign.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	AccountID   string          `json:"account_id"`
	CategoryID  string          `json:"category_id"`
	Type        TransactionType `json:"transaction_type"`
	AmountCents int64           `json:"amount_cents"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}
