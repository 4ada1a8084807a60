package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/centsible/centsible/internal/database/repository"
)

func TestAddTransactionCreatesAccountAndClassifies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newTestService(t, db)

	out, err := svc.AddTransaction(ctx, "user-1", map[string]string{
		"amount":           "42.50",
		"date":             "01/03/2024 10:00",
		"description":      "Tesco groceries",
		"transaction_type": "Expense",
		"account_name":     "Checking",
	})
	require.NoError(t, err)

	require.Equal(t, "42.50", out.Amount)
	require.Equal(t, repository.TypeExpense, out.Type)
	require.Equal(t, "Food > Groceries", out.Category)
	require.Equal(t, "01/03/2024 10:00", out.Date)
	require.NotEmpty(t, out.ID)
	require.NotEmpty(t, out.AccountID)
	require.NotEmpty(t, out.CategoryID)

	acct, err := repository.NewAccountRepo(db).GetByName(ctx, "user-1", "Checking")
	require.NoError(t, err)
	require.NotNil(t, acct)
	require.Equal(t, int64(-4250), acct.BalanceCents)
	require.Equal(t, repository.KindNormal, acct.Kind)

	row, err := repository.NewTransactionRepo(db).Get(ctx, out.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, int64(4250), row.AmountCents)
	require.Equal(t, acct.ID, row.AccountID)
}

func TestAddTransactionStripsUnknownFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newTestService(t, db)

	raw := rawExpense("10.00", "Tesco groceries", "Checking")
	raw["user_id"] = "someone-else" // over-posting attempt
	raw["balance"] = "999999"

	out, err := svc.AddTransaction(ctx, "user-1", raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", out.UserID)

	row, err := repository.NewTransactionRepo(db).Get(ctx, out.ID)
	require.NoError(t, err)
	require.Equal(t, "user-1", row.UserID)
}

func TestAddTransactionInputErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newTestService(t, db)

	cases := []map[string]string{
		{"amount": "abc", "date": "01/03/2024 10:00", "description": "x", "transaction_type": "Expense", "account_name": "A"},
		{"amount": "-5.00", "date": "01/03/2024 10:00", "description": "x", "transaction_type": "Expense", "account_name": "A"},
		{"amount": "0", "date": "01/03/2024 10:00", "description": "x", "transaction_type": "Expense", "account_name": "A"},
		{"amount": "5.00", "date": "2024-03-01", "description": "x", "transaction_type": "Expense", "account_name": "A"},
		{"amount": "5.00", "date": "01/03/2024 10:00", "description": "x", "transaction_type": "Transfer", "account_name": "A"},
		{"amount": "5.00", "date": "01/03/2024 10:00", "description": "x", "transaction_type": "Expense"},
		{},
	}
	for i, raw := range cases {
		_, err := svc.AddTransaction(ctx, "user-1", raw)
		require.Error(t, err, "case %d", i)
		require.True(t, IsInputError(err), "case %d: %v", i, err)
	}

	// nothing was created by any of the rejected submissions
	require.Zero(t, countRows(t, db, "transactions"))
	require.Zero(t, countRows(t, db, "accounts"))
	require.Zero(t, countRows(t, db, "budgets"))
}

func TestAddTransactionRollsBackOnPersistFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newTestService(t, db)

	// make the final insert fail after account and balance mutations
	_, err := db.Exec("DROP TABLE transactions")
	require.NoError(t, err)

	_, err = svc.AddTransaction(ctx, "user-1", rawExpense("10.00", "Tesco groceries", "Checking"))
	require.Error(t, err)
	require.False(t, IsInputError(err))

	// the account created earlier in the unit of work must be gone
	acct, err := repository.NewAccountRepo(db).GetByName(ctx, "user-1", "Checking")
	require.NoError(t, err)
	require.Nil(t, acct)
	require.Zero(t, countRows(t, db, "categories"))
}

func TestLedgerArithmeticCommutes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newTestService(t, db)

	// 3 incomes of 20.00 and 2 expenses of 7.50, interleaved
	submissions := []map[string]string{
		rawIncome("20.00", "ACME salary", "Main"),
		rawExpense("7.50", "Tesco groceries", "Main"),
		rawIncome("20.00", "ACME salary", "Main"),
		rawIncome("20.00", "ACME salary", "Main"),
		rawExpense("7.50", "Tesco groceries", "Main"),
	}
	for _, raw := range submissions {
		_, err := svc.AddTransaction(ctx, "user-1", raw)
		require.NoError(t, err)
	}

	acct, err := repository.NewAccountRepo(db).GetByName(ctx, "user-1", "Main")
	require.NoError(t, err)
	require.Equal(t, int64(3*2000-2*750), acct.BalanceCents)
}

func TestConcurrentExpensesLoseNoUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newTestService(t, db)

	// existing account with balance 100.00
	_, err := svc.AddTransaction(ctx, "user-1", rawIncome("100.00", "ACME salary", "Shared"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, amount := range []string{"10.00", "15.00"} {
		wg.Add(1)
		go func(amount string) {
			defer wg.Done()
			_, err := svc.AddTransaction(ctx, "user-1", rawExpense(amount, "Tesco groceries", "Shared"))
			errs <- err
		}(amount)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	acct, err := repository.NewAccountRepo(db).GetByName(ctx, "user-1", "Shared")
	require.NoError(t, err)
	require.Equal(t, int64(7500), acct.BalanceCents)
}

func TestResolveAccountIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	ledger := NewLedger(db)

	first, created, err := ledger.ResolveAccount(ctx, "user-1", "Checking")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := ledger.ResolveAccount(ctx, "user-1", "Checking")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, countRows(t, db, "accounts"))

	// case-sensitive: a different casing is a different account
	other, created, err := ledger.ResolveAccount(ctx, "user-1", "checking")
	require.NoError(t, err)
	require.True(t, created)
	require.NotEqual(t, first.ID, other.ID)
}

func TestApplyDeltaSignFromType(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	ledger := NewLedger(db)

	acct, _, err := ledger.ResolveAccount(ctx, "user-1", "Main")
	require.NoError(t, err)

	balance, err := ledger.ApplyDelta(ctx, acct.ID, 5000, repository.TypeIncome)
	require.NoError(t, err)
	require.Equal(t, int64(5000), balance)

	balance, err = ledger.ApplyDelta(ctx, acct.ID, 2000, repository.TypeExpense)
	require.NoError(t, err)
	require.Equal(t, int64(3000), balance)

	_, err = ledger.ApplyDelta(ctx, acct.ID, -100, repository.TypeIncome)
	require.Error(t, err)
}

func TestLazyCategoryCreation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newTestService(t, db)

	// the catalog starts empty; the classifier's labels get created lazily
	out, err := svc.AddTransaction(ctx, "user-1", rawExpense("9.99", "NETFLIX.COM", "Main"))
	require.NoError(t, err)
	require.Equal(t, "Fixed Costs > Subscriptions", out.Category)

	cats := repository.NewCategoryRepo(db)
	parent, err := cats.GetByName(ctx, nil, "Fixed Costs")
	require.NoError(t, err)
	require.NotNil(t, parent)
	sub, err := cats.GetByName(ctx, &parent.ID, "Subscriptions")
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, sub.ID, out.CategoryID)

	// a second hit resolves the same rows instead of duplicating them
	before := countRows(t, db, "categories")
	_, err = svc.AddTransaction(ctx, "user-1", rawExpense("9.99", "NETFLIX.COM", "Main"))
	require.NoError(t, err)
	require.Equal(t, before, countRows(t, db, "categories"))
}

func TestBillSettledByMatchingExpense(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newTestService(t, db)
	bills := repository.NewBillRepo(db)

	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	bill := repository.Bill{ID: "bill-1", UserID: "user-1", Name: "Netflix", AmountCents: 999, DueDay: 5, NextDue: due}
	require.NoError(t, bills.Upsert(ctx, bill))

	_, err := svc.AddTransaction(ctx, "user-1", rawExpense("9.99", "NETFLIX.COM subscription", "Main"))
	require.NoError(t, err)

	got, err := bills.Get(ctx, "bill-1")
	require.NoError(t, err)
	require.True(t, got.Paid)

	// an income of the same amount must not settle anything
	require.NoError(t, bills.Upsert(ctx, repository.Bill{ID: "bill-2", UserID: "user-1", Name: "Gym", AmountCents: 2000, DueDay: 5, NextDue: due}))
	_, err = svc.AddTransaction(ctx, "user-1", rawIncome("20.00", "refund gym", "Main"))
	require.NoError(t, err)
	got, err = bills.Get(ctx, "bill-2")
	require.NoError(t, err)
	require.False(t, got.Paid)
}
