package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/centsible/centsible/internal/database/repository"
	"github.com/centsible/centsible/internal/logging"
)

func newMaintenance(t *testing.T) (*MaintenanceService, *TransactionService) {
	t.Helper()
	db := newTestDB(t)
	svc := newTestService(t, db)
	return &MaintenanceService{DB: db, Log: logging.NewWithWriter(testWriter{t})}, svc
}

func TestResetWipesEverything(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	maint, svc := newMaintenance(t)
	db := maint.DB

	_, err := svc.AddTransaction(ctx, "user-1", rawExpense("10.00", "Tesco groceries", "Main"))
	require.NoError(t, err)
	require.NotZero(t, countRows(t, db, "transactions"))

	require.NoError(t, maint.Reset(ctx))
	for _, table := range []string{"transactions", "bills", "budgets", "categories", "accounts"} {
		require.Zero(t, countRows(t, db, table), table)
	}

	// the schema survives; ingestion still works afterwards
	_, err = svc.AddTransaction(ctx, "user-1", rawExpense("5.00", "Tesco groceries", "Main"))
	require.NoError(t, err)
}

func TestRolloverBudgetsResetsExpiredPeriods(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	maint, _ := newMaintenance(t)
	db := maint.DB

	groceriesID := seedCategory(t, db, "Food", "Groceries")
	salaryID := seedCategory(t, db, "Income", "Salary")
	tracker := NewBudgetTracker(db)

	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := tracker.SetBudget(ctx, "user-1", groceriesID, 10000, feb)
	require.NoError(t, err)
	_, err = tracker.ApplyExpense(ctx, "user-1", groceriesID, 4200)
	require.NoError(t, err)

	// a budget already in the current period keeps its spend
	_, err = tracker.SetBudget(ctx, "user-1", salaryID, 5000, mar)
	require.NoError(t, err)
	_, err = tracker.ApplyExpense(ctx, "user-1", salaryID, 100)
	require.NoError(t, err)

	require.NoError(t, maint.RolloverBudgets(ctx, mar))

	expired, err := tracker.Budgets.GetByCategory(ctx, "user-1", groceriesID)
	require.NoError(t, err)
	require.Zero(t, expired.SpentCents)
	require.Equal(t, MonthStart(mar), expired.PeriodStart.UTC())

	current, err := tracker.Budgets.GetByCategory(ctx, "user-1", salaryID)
	require.NoError(t, err)
	require.Equal(t, int64(100), current.SpentCents)
}

func TestAdvanceBillsMovesPaidPastDue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	maint, _ := newMaintenance(t)
	bills := repository.NewBillRepo(maint.DB)

	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	require.NoError(t, bills.Upsert(ctx, repository.Bill{ID: "b-paid", UserID: "user-1", Name: "Rent", AmountCents: 90000, DueDay: 5, NextDue: due, Paid: true}))
	require.NoError(t, bills.Upsert(ctx, repository.Bill{ID: "b-unpaid", UserID: "user-1", Name: "Gym", AmountCents: 2000, DueDay: 5, NextDue: due}))

	require.NoError(t, maint.AdvanceBills(ctx, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))

	paid, err := bills.Get(ctx, "b-paid")
	require.NoError(t, err)
	require.False(t, paid.Paid)
	require.True(t, paid.NextDue.After(due), "due date should advance, got %s", paid.NextDue)

	unpaid, err := bills.Get(ctx, "b-unpaid")
	require.NoError(t, err)
	require.False(t, unpaid.Paid)
	require.Equal(t, due, unpaid.NextDue.UTC())
}
