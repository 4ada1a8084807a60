package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/centsible/centsible/internal/database/repository"
)

// BudgetTracker accumulates expenses onto per-(user, category) budgets.
type BudgetTracker struct {
	Budgets *repository.BudgetRepo
}

// NewBudgetTracker builds a tracker over db, which may be a *sql.Tx.
func NewBudgetTracker(db repository.DBTX) *BudgetTracker {
	return &BudgetTracker{Budgets: repository.NewBudgetRepo(db)}
}

// ApplyExpense adds a positive expense magnitude to the matching budget's
// spent accumulator and returns the updated budget. An unbudgeted category
// is a valid state and returns nil. Budgets already over their limit still
// accumulate; enforcement is not this component's concern.
func (t *BudgetTracker) ApplyExpense(ctx context.Context, userID, categoryID string, amountCents int64) (*repository.Budget, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("apply expense: magnitude must be positive, got %d", amountCents)
	}
	b, err := t.Budgets.AddSpent(ctx, userID, categoryID, amountCents)
	if err != nil {
		return nil, fmt.Errorf("accumulate budget spend: %w", err)
	}
	return b, nil
}

// SetBudget creates or replaces the monthly limit for (user, category). The
// period starts at the beginning of the current month.
func (t *BudgetTracker) SetBudget(ctx context.Context, userID, categoryID string, limitCents int64, now time.Time) (repository.Budget, error) {
	if limitCents <= 0 {
		return repository.Budget{}, inputErrorf("budget limit must be positive")
	}
	b := repository.Budget{
		ID:          uuid.NewString(),
		UserID:      userID,
		CategoryID:  categoryID,
		LimitCents:  limitCents,
		Period:      "monthly",
		PeriodStart: MonthStart(now),
	}
	if err := t.Budgets.Upsert(ctx, b); err != nil {
		return repository.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	stored, err := t.Budgets.GetByCategory(ctx, userID, categoryID)
	if err != nil {
		return repository.Budget{}, fmt.Errorf("reload budget: %w", err)
	}
	return *stored, nil
}

// MonthStart truncates t to the first instant of its month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
